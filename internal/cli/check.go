package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ai-visibility-validator/internal/ioformats"
	"ai-visibility-validator/internal/report"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		ro       report.Options
		htmlPath string
	)

	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Build a full AI visibility report for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			rep, err := c.Reports.Check(cmd.Context(), args[0], ro)
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}
			if htmlPath != "" {
				if err := writeHTML(htmlPath, rep); err != nil {
					return err
				}
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return report.RenderText(cmd.OutOrStdout(), rep)
		},
	}

	addReportFlags(cmd, &ro)
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write an HTML report to this file")
	return cmd
}

func writeHTML(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.RenderHTML(f, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addReportFlags(cmd *cobra.Command, ro *report.Options) {
	cmd.Flags().StringVar(&ro.FormFactor, "form-factor", "DESKTOP", "CrUX form factor (DESKTOP, PHONE, TABLET)")
	cmd.Flags().BoolVar(&ro.Probe, "probe", false, "Also measure bot TTFB")
	cmd.Flags().StringSliceVar(&ro.BotKeys, "bots", nil, "Probe profile keys (default all)")
}

type batchRecord struct {
	URL    string         `json:"url"`
	Report *report.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		input       string
		output      string
		concurrency int
		ro          report.Options
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Check every URL in a CSV or NDJSON file",
		Long:  "Read URLs from --input (CSV with a 'url' column, NDJSON or one URL per line) and write one report per line as NDJSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("missing --input")
			}
			if concurrency < 1 {
				concurrency = 1
			}
			urls, err := ioformats.ReadURLs(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			results := make([]batchRecord, len(urls))
			sem := make(chan struct{}, concurrency)
			done := make(chan int, len(urls))
			for i, u := range urls {
				sem <- struct{}{} // acquire
				go func(i int, u string) {
					defer func() { <-sem; done <- i }()
					ctx, cancel := context.WithTimeout(cmd.Context(), 2*c.Config.RequestTimeout)
					defer cancel()
					rep, err := c.Reports.Check(ctx, u, ro)
					if err != nil {
						results[i] = batchRecord{URL: u, Error: err.Error()}
						return
					}
					results[i] = batchRecord{URL: u, Report: rep}
				}(i, u)
			}
			for range urls {
				<-done
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return ioformats.WriteNDJSON(w, results)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input file (csv with 'url' column or ndjson), - for stdin")
	cmd.Flags().StringVar(&output, "output", "", "Output NDJSON file (default stdout)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Worker concurrency")
	addReportFlags(cmd, &ro)
	return cmd
}
