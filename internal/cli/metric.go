package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ai-visibility-validator/internal/classifier"
	"ai-visibility-validator/internal/report"
)

func newMetricCmd(opts *rootOptions) *cobra.Command {
	var table bool

	cmd := &cobra.Command{
		Use:   "metric <ttfb|cls|inp> [value]",
		Short: "Classify a Core Web Vitals sample",
		Long:  "Classify a TTFB, CLS or INP sample into its graded category, or print the category table with --table.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := classifier.ParseKind(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if table || len(args) == 1 {
				cats, err := classifier.Table(kind)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(out, cats)
				}
				for _, c := range cats {
					fmt.Fprintf(out, "%-3s %-18s %-8s %-8s %s\n", c.Grade, c.Name, c.Lower, c.Upper, c.Description)
				}
				return nil
			}

			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("value %q: %w", args[1], classifier.ErrInvalidMetricValue)
			}
			cat, err := classifier.Classify(kind, value)
			if err != nil {
				return err
			}
			g := report.Grade{Kind: kind, Value: value, Category: cat}
			if opts.jsonOutput {
				return writeJSON(out, g)
			}
			return report.RenderGrade(out, g)
		},
	}

	cmd.Flags().BoolVar(&table, "table", false, "Print the category table")
	return cmd
}
