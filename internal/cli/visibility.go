package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ai-visibility-validator/internal/crawler"
)

func newVisibilityCmd(opts *rootOptions) *cobra.Command {
	var (
		renderedPath string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "visibility <url>",
		Short: "Compare a rendered page with the HTML crawlers receive",
		Long:  "Fetch the page without running scripts and compare its visible text with a rendering saved from a browser (--rendered).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if renderedPath == "" {
				return fmt.Errorf("--rendered is required")
			}
			pageURL, err := crawler.NormalizeURL(args[0])
			if err != nil {
				return err
			}
			rendered, err := os.ReadFile(renderedPath)
			if err != nil {
				return err
			}
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			res, _, err := c.Analyzer.Analyze(cmd.Context(), pageURL, string(rendered))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, res)
			}
			s := res.Summary
			fmt.Fprintf(out, "JS enabled:  %d words\nJS disabled: %d words\nHidden:      %d words (%.1f%%)\n",
				s.EnabledWords, s.DisabledWords, s.Difference, s.HiddenPercent)
			if len(res.Diff.Lost) > 0 {
				fmt.Fprintln(out, "\nOnly visible with JavaScript:")
				for i, el := range res.Diff.Lost {
					if i == limit {
						break
					}
					fmt.Fprintf(out, "  [%s] %s\n", el.Category, el.Text)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&renderedPath, "rendered", "", "HTML file saved after the page's scripts ran")
	cmd.Flags().IntVar(&limit, "limit", 10, "Lost elements to list")
	return cmd
}
