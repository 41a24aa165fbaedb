// Package main provides the CLI entry point for the nexus retrieval
// service: a multi-tenant RAG HTTP API with agent tool orchestration over
// documents, folders, and knowledge graphs.
//
// # Basic Usage
//
// Start the server:
//
//	nexus-server serve --config config.yaml
//
// Manage database migrations:
//
//	nexus-server migrate up
//	nexus-server migrate status
//
// Issue a developer token:
//
//	nexus-server token issue --name dev
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "nexus-server",
		Short:        "nexus-server - multi-tenant RAG retrieval and agent service",
		Version:      version + " (commit: " + commit + ", built: " + date + ")",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildMigrateCmd(),
		buildTokenCmd(),
	)

	return rootCmd
}

func defaultConfigPath() string {
	if path := os.Getenv("NEXUS_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
