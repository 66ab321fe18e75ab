package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ai-visibility-validator/internal/report"
	"ai-visibility-validator/internal/robots"
)

func newRobotsCmd(opts *rootOptions) *cobra.Command {
	var (
		file string
		bot  string
	)

	cmd := &cobra.Command{
		Use:   "robots [url]",
		Short: "Evaluate robots.txt for every AI crawler",
		Long:  "Fetch robots.txt for a site (or read a local file with --file) and report which AI crawlers it blocks.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("specify a url or use --file")
			}
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			var crawl report.Crawlability
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				directives := robots.Parse(string(data))
				batch := robots.BatchEvaluate(c.Config.Catalog.Bots, directives)
				crawl = report.Crawlability{
					RobotsFound:   true,
					RobotsURL:     file,
					RobotsContent: string(data),
					Directives:    directives,
					Bots:          batch.Verdicts,
					Summary:       batch.Summary,
				}
			} else {
				ctx, cancel := context.WithTimeout(cmd.Context(), c.Config.RequestTimeout)
				defer cancel()
				crawl, err = report.CheckCrawlability(ctx, c.HTTP, args[0], c.Config.Catalog.Bots)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if bot != "" {
				res := robots.IsBlocked(bot, crawl.Directives)
				if opts.jsonOutput {
					return writeJSON(out, res)
				}
				state := "allowed"
				if res.Blocked {
					state = "blocked"
				}
				fmt.Fprintf(out, "%s: %s (%s)\n", bot, state, res.Reason.Describe())
				return nil
			}
			if opts.jsonOutput {
				return writeJSON(out, crawl)
			}
			return report.RenderCrawlability(out, crawl)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read robots.txt from a local file")
	cmd.Flags().StringVar(&bot, "bot", "", "Evaluate a single user-agent token")
	return cmd
}
