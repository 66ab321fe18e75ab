package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "ai-visibility-validator/internal/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the validator as MCP tools over stdio",
		Long:  "Start a Model Context Protocol server on stdio so AI assistants can classify metrics, evaluate robots.txt, probe bots and build reports.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			s := mcpadapter.NewServer(version, mcpadapter.Deps{
				Reports: c.Reports,
				Prober:  c.Prober,
				Robots:  c.HTTP,
				Catalog: c.Config.Catalog,
			})
			return server.ServeStdio(s)
		},
	}
}
