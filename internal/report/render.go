package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ai-visibility-validator/internal/classifier"
	"ai-visibility-validator/internal/robots"
)

var (
	accent  = lipgloss.Color("#25995c")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	danger  = lipgloss.Color("#F44336")
	success = lipgloss.Color("#25995c")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	allowedStyle  = lipgloss.NewStyle().Foreground(success)
	blockedStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	companyStyle  = lipgloss.NewStyle().Bold(true)
	separatorLine = lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("─", 60))
)

// RenderText writes a human-readable report to w.
func RenderText(w io.Writer, r *Report) error {
	var b strings.Builder

	header := titleStyle.Render("AI Visibility Report") + "\n" +
		r.URL + "\n" +
		dimStyle.Render(r.GeneratedAt.Format("2006-01-02 15:04:05 MST")+"  "+r.ID)
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	if !r.HasMetrics() {
		b.WriteString(dimStyle.Render("No CrUX data available for this website. Chrome UX Report requires a minimum amount of real-user traffic."))
		b.WriteString("\n\n")
	} else {
		writeMetricSet(&b, "Page", r.Page)
		writeMetricSet(&b, "Website", r.OriginMetrics)
	}

	writeCrawlability(&b, r.Crawlability)

	if len(r.Probes) > 0 {
		b.WriteString(sectionStyle.Render("Bot TTFB probes"))
		b.WriteString("\n")
		for _, p := range r.Probes {
			if !p.OK() {
				fmt.Fprintf(&b, "  %-18s %s\n", p.Label, blockedStyle.Render("error: "+p.Error))
				continue
			}
			cat, _ := classifier.Classify(classifier.TTFB, float64(p.TTFBMs))
			line := fmt.Sprintf("%6dms  %-3s %s", p.TTFBMs, p.Grade, p.Category)
			fmt.Fprintf(&b, "  %-18s %s %s\n", p.Label, categoryStyle(cat).Render(line), dimStyle.Render(fmt.Sprintf("status %d, %d redirects", p.Status, p.Redirects)))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderCrawlability writes the robots.txt section on its own.
func RenderCrawlability(w io.Writer, c Crawlability) error {
	var b strings.Builder
	writeCrawlability(&b, c)
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderGrade writes one classified sample with its impact line.
func RenderGrade(w io.Writer, g Grade) error {
	var b strings.Builder
	writeGrade(&b, g)
	_, err := io.WriteString(w, b.String())
	return err
}

func categoryStyle(c classifier.Category) lipgloss.Style {
	if c.Color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color))
}

func writeMetricSet(b *strings.Builder, title string, set MetricSet) {
	b.WriteString(sectionStyle.Render(title + " metrics"))
	b.WriteString(" ")
	b.WriteString(dimStyle.Render(set.URL))
	b.WriteString("\n")
	if len(set.Grades) == 0 {
		b.WriteString(dimStyle.Render("  No data"))
		b.WriteString("\n\n")
		return
	}
	for _, g := range set.Grades {
		writeGrade(b, g)
	}
	b.WriteString("\n")
}

func writeGrade(b *strings.Builder, g Grade) {
	line := fmt.Sprintf("  %-5s %10s  %-3s %-18s %s",
		strings.ToUpper(g.Kind.String()), FormatValue(g.Kind, g.Value), g.Category.Grade, g.Category.Name, g.Category.Description)
	b.WriteString(categoryStyle(g.Category).Render(line))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("        " + g.Category.Impact))
	b.WriteString("\n")
}

func writeCrawlability(b *strings.Builder, c Crawlability) {
	b.WriteString(sectionStyle.Render("Robots.txt"))
	b.WriteString("\n")
	status := "Found"
	if !c.RobotsFound {
		status = "Not Found"
	}
	fmt.Fprintf(b, "  Status: %s  %s\n", status, dimStyle.Render(c.RobotsURL))
	if !c.RobotsFound {
		b.WriteString(dimStyle.Render("  No robots.txt file found. All bots are allowed by default."))
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "  Total %d  %s  %s\n", c.Summary.Total,
		allowedStyle.Render(fmt.Sprintf("Allowed %d", c.Summary.Allowed)),
		blockedStyle.Render(fmt.Sprintf("Blocked %d", c.Summary.Blocked)))
	b.WriteString(separatorLine)
	b.WriteString("\n")

	for _, group := range GroupByCompany(c.Bots) {
		b.WriteString(companyStyle.Render(group.Company))
		b.WriteString("\n")
		for _, v := range group.Bots {
			state := allowedStyle.Render("Allowed")
			if !v.Allowed {
				state = blockedStyle.Render("Blocked")
			}
			fmt.Fprintf(b, "  %-24s %s  %s\n", v.UserAgent, state, dimStyle.Render(v.Product))
		}
	}
	b.WriteString("\n")
}

// CompanyGroup is the verdicts of one company's bots.
type CompanyGroup struct {
	Company string
	Bots    []robots.Verdict
}

// GroupByCompany groups verdicts by company in first-seen order.
func GroupByCompany(verdicts []robots.Verdict) []CompanyGroup {
	index := map[string]int{}
	var out []CompanyGroup
	for _, v := range verdicts {
		i, ok := index[v.Company]
		if !ok {
			i = len(out)
			index[v.Company] = i
			out = append(out, CompanyGroup{Company: v.Company})
		}
		out[i].Bots = append(out[i].Bots, v)
	}
	return out
}

// FormatValue renders a sample in its display unit: CLS with three decimals,
// millisecond metrics as integers.
func FormatValue(kind classifier.Kind, v float64) string {
	if kind == classifier.CLS {
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64) + kind.Unit()
}
