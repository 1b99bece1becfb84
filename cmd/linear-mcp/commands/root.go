package commands

import (
	"context"
	"fmt"

	"linear-mcp/internal/config"
	"linear-mcp/internal/linear"
	"linear-mcp/internal/linear/memory"
	"linear-mcp/internal/logging"
	"linear-mcp/internal/mcp"
	"linear-mcp/internal/resolve"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	mock    bool

	api    linear.API
	server *mcp.Server
)

var rootCmd = &cobra.Command{
	Use:   "linear-mcp",
	Short: "linear-mcp is an MCP server for Linear",
	Long: `An MCP server that lets AI agents read and change Linear issues, projects,
cycles, labels and teams using human-readable names instead of internal ids.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		if mock {
			store := memory.New()
			if err := memory.Seed(store); err != nil {
				return fmt.Errorf("seed mock workspace: %w", err)
			}
			api = store
			log.Warn().Msg("Serving the in-memory demo workspace, no calls reach Linear")
		} else {
			api = linear.NewClient(cfg.Linear)
		}
		cache := resolve.NewCache(cfg.CacheTTL, cfg.CacheMaxEntries)
		server = mcp.NewServer(api, resolve.New(api, cache))

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Dur("cacheTTL", cfg.CacheTTL).
			Int("cacheMaxEntries", cfg.CacheMaxEntries).
			Msg("linear-mcp starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Serve(cmd.Context(), Version)
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&mock, "mock", false, "serve a seeded in-memory workspace instead of Linear")
	rootCmd.AddCommand(toolsCmd, callCmd, openCmd, versionCmd)
}
