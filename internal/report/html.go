package report

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/report.html
var reportHTML string

var htmlTemplate = pongo2.Must(pongo2.FromString(reportHTML))

type gradeRow struct {
	Metric      string
	Value       string
	Grade       string
	Name        string
	Description string
	Impact      string
	Color       string
}

type metricSection struct {
	Title string
	URL   string
	Error string
	Rows  []gradeRow
}

type botRow struct {
	UserAgent string
	Product   string
	Allowed   bool
	Reason    string
}

type companyRows struct {
	Company string
	Bots    []botRow
}

type robotsView struct {
	Found   bool
	URL     string
	Total   int
	Allowed int
	Blocked int
	Groups  []companyRows
}

// RenderHTML writes r as a standalone HTML page.
func RenderHTML(w io.Writer, r *Report) error {
	ctx := pongo2.Context{
		"url":        r.URL,
		"domain":     r.Domain,
		"id":         r.ID,
		"generated":  r.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
		"hasMetrics": r.HasMetrics(),
		"metrics":    []metricSection{metricView("Page", r.Page), metricView("Website", r.OriginMetrics)},
		"robots":     crawlabilityView(r.Crawlability),
		"probes":     r.Probes,
	}
	if err := htmlTemplate.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func metricView(title string, set MetricSet) metricSection {
	s := metricSection{Title: title, URL: set.URL, Error: set.Error}
	for _, g := range set.Grades {
		s.Rows = append(s.Rows, gradeRow{
			Metric:      strings.ToUpper(g.Kind.String()),
			Value:       FormatValue(g.Kind, g.Value),
			Grade:       g.Category.Grade,
			Name:        g.Category.Name,
			Description: g.Category.Description,
			Impact:      g.Category.Impact,
			Color:       g.Category.Color,
		})
	}
	return s
}

func crawlabilityView(c Crawlability) robotsView {
	v := robotsView{
		Found:   c.RobotsFound,
		URL:     c.RobotsURL,
		Total:   c.Summary.Total,
		Allowed: c.Summary.Allowed,
		Blocked: c.Summary.Blocked,
	}
	for _, g := range GroupByCompany(c.Bots) {
		rows := companyRows{Company: g.Company}
		for _, b := range g.Bots {
			rows.Bots = append(rows.Bots, botRow{
				UserAgent: b.UserAgent,
				Product:   b.Product,
				Allowed:   b.Allowed,
				Reason:    b.Detail,
			})
		}
		v.Groups = append(v.Groups, rows)
	}
	return v
}
