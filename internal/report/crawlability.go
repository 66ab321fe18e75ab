package report

import (
	"context"

	"ai-visibility-validator/internal/bots"
	"ai-visibility-validator/internal/crawler"
	"ai-visibility-validator/internal/robots"
)

// TextFetcher retrieves robots.txt.
type TextFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Crawlability is the robots.txt verdict for every catalogued bot.
type Crawlability struct {
	RobotsFound   bool               `json:"robotsExists"`
	RobotsURL     string             `json:"robotsUrl"`
	RobotsContent string             `json:"robotsContent,omitempty"`
	FetchError    string             `json:"fetchError,omitempty"`
	Directives    []robots.Directive `json:"directives,omitempty"`
	Bots          []robots.Verdict   `json:"bots"`
	Summary       robots.Summary     `json:"summary"`
}

// CheckCrawlability fetches robots.txt for pageURL's host and evaluates list
// against it. A failed fetch means no rules: every bot is allowed.
func CheckCrawlability(ctx context.Context, f TextFetcher, pageURL string, list []bots.Bot) (Crawlability, error) {
	robotsURL, err := crawler.RobotsURL(pageURL)
	if err != nil {
		return Crawlability{}, err
	}

	content, err := f.FetchText(ctx, robotsURL)
	if err != nil {
		batch := robots.DefaultAllow(list)
		return Crawlability{
			RobotsURL:  robotsURL,
			FetchError: err.Error(),
			Bots:       batch.Verdicts,
			Summary:    batch.Summary,
		}, nil
	}

	directives := robots.Parse(content)
	batch := robots.BatchEvaluate(list, directives)
	return Crawlability{
		RobotsFound:   true,
		RobotsURL:     robotsURL,
		RobotsContent: content,
		Directives:    directives,
		Bots:          batch.Verdicts,
		Summary:       batch.Summary,
	}, nil
}
