package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/nexus-rag/internal/auth"
	"github.com/haasonsaas/nexus-rag/internal/config"
	"github.com/haasonsaas/nexus-rag/pkg/models"
)

// buildTokenCmd creates the "token" command group for offline credential
// issuance, useful when bootstrapping a deployment before any HTTP
// request has been made.
func buildTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue developer tokens",
	}
	cmd.AddCommand(buildTokenIssueCmd())
	return cmd
}

func buildTokenIssueCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		appID       string
		permissions []string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a developer token and print its connection URI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			service := auth.NewService(auth.Config{
				JWTSecret:   cfg.Auth.JWTSecret,
				TokenExpiry: cfg.Auth.TokenExpiry,
				Dev:         cfg.Auth.Dev,
			})

			if name == "" {
				name = "developer"
			}
			token, err := service.Issue(models.AuthContext{
				EntityType:  models.EntityDeveloper,
				EntityID:    name,
				AppID:       appID,
				Permissions: permissions,
				ExpiresAt:   time.Now().Add(cfg.Auth.TokenExpiry),
			})
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			host := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
			fmt.Fprintln(cmd.OutOrStdout(), auth.BuildURI(name, token, host))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to YAML configuration file")
	cmd.Flags().StringVar(&name, "name", "developer", "Developer/entity name to embed in the token")
	cmd.Flags().StringVar(&appID, "app-id", "", "Scope the token to a single app")
	cmd.Flags().StringSliceVar(&permissions, "permissions", []string{"read", "write", "admin"}, "Permissions to grant")
	return cmd
}
