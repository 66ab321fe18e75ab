package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ai-visibility-validator/internal/crawler"
)

func newProbeCmd(opts *rootOptions) *cobra.Command {
	var botKeys []string

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Measure TTFB as seen by AI crawler user agents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageURL, err := crawler.NormalizeURL(args[0])
			if err != nil {
				return err
			}
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			profiles := c.Config.Catalog.Select(botKeys)
			if len(profiles) == 0 {
				return fmt.Errorf("no valid bot keys in %v", botKeys)
			}
			results := c.Prober.Run(cmd.Context(), pageURL, profiles)

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, results)
			}
			for _, r := range results {
				if !r.OK() {
					fmt.Fprintf(out, "%-18s error: %s\n", r.Label, r.Error)
					continue
				}
				fmt.Fprintf(out, "%-18s %6dms  %-3s %-18s status %d, %d redirects\n",
					r.Label, r.TTFBMs, r.Grade, r.Category, r.Status, r.Redirects)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&botKeys, "bots", nil, "Probe profile keys (default all)")
	return cmd
}
