package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/quotegen/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing quote generation, trending topics and visitor stats to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg, false)
		if err != nil {
			return err
		}
		defer closeStore()

		svc, err := newQuoteService(cfg, store)
		if err != nil {
			return err
		}

		mcpserver.Version = Version

		// stdout carries the protocol, so status goes to stderr.
		fmt.Fprintf(os.Stderr, "quotegen MCP server started on stdio (provider=%s, model=%s)\n", cfg.Provider, cfg.Model)

		srv := mcpserver.NewServer(svc, store, cfg.Trending.Limit)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
