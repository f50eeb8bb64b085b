package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/storefront-apps/contentsets/internal/app"
	"github.com/storefront-apps/contentsets/internal/config"
)

var (
	configPath string

	tokenShop string
	tokenTTL  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "contentsets",
	Short:         "FAQ and testimonial sets for Shopify storefronts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin and storefront HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.RunServer(ctx, appConfig())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Migrate(cmd.Context(), appConfig())
	},
}

var settingCmd = &cobra.Command{
	Use:   "setting",
	Short: "Manage runtime settings",
}

var settingSetCmd = &cobra.Command{
	Use:   "set <key> <json-value>",
	Short: "Store a runtime setting (e.g. STOREFRONT_CACHE_TTL_SECONDS 120)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value any
		if errDecode := json.Unmarshal([]byte(args[1]), &value); errDecode != nil {
			return fmt.Errorf("value must be JSON: %w", errDecode)
		}
		if errPut := app.PutSetting(cmd.Context(), appConfig(), args[0], value); errPut != nil {
			return errPut
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
		return nil
	},
}

var sessionTokenCmd = &cobra.Command{
	Use:   "session-token",
	Short: "Sign a session token for local testing of the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenShop == "" {
			return fmt.Errorf("--shop is required")
		}
		token, err := app.IssueSessionToken(appConfig(), tokenShop, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	sessionTokenCmd.Flags().StringVar(&tokenShop, "shop", "", "shop domain, e.g. demo.myshopify.com")
	sessionTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")

	settingCmd.AddCommand(settingSetCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, settingCmd, sessionTokenCmd)
}

func appConfig() config.AppConfig {
	return config.AppConfig{ConfigPath: configPath}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
