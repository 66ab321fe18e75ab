// Package cli implements the aivis command line.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"ai-visibility-validator/internal/config"
	"ai-visibility-validator/internal/wiring"
	"ai-visibility-validator/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "aivis",
		Short:         "Check how visible a website is to AI crawlers",
		Long:          "aivis grades Core Web Vitals, evaluates robots.txt for AI crawlers, measures bot TTFB and compares content with and without JavaScript.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMetricCmd(opts))
	cmd.AddCommand(newRobotsCmd(opts))
	cmd.AddCommand(newProbeCmd(opts))
	cmd.AddCommand(newVisibilityCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// container loads configuration and builds collaborators logging to the
// command's stderr.
func (o *rootOptions) container(cmd *cobra.Command) (*wiring.Container, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	l := logger.NewWithOptions(cmd.ErrOrStderr(), o.logLevel, cfg.LogFormat)
	return wiring.New(cfg, l), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("aivis %s (commit %s)\n", version, commit)
		},
	}
}
