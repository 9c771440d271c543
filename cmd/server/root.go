package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/apps"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/apps/recipe"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/storage"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "recipe-api",
	Short: "Recipe API server",
	Long: `A REST API for user accounts and personal recipes with tags,
ingredients and image uploads.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (env vars override it)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createSuperuserCmd)
}

// runtime holds what every subcommand needs after startup.
type runtime struct {
	cfg     *config.Config
	db      *gorm.DB
	media   *storage.Media
	plugins []apps.Plugin
}

// bootstrap loads config, connects to the database and migrates shared
// and plugin models.
func bootstrap() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.MigrateShared(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("shared migration failed: %w", err)
	}

	media := storage.NewMedia(cfg.MediaRoot, cfg.MediaURL)
	plugins := []apps.Plugin{
		recipe.New(media),
	}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(db, models); err != nil {
				_ = database.Close(db)
				return nil, fmt.Errorf("plugin %s migration failed: %w", p.ID(), err)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	return &runtime{cfg: cfg, db: db, media: media, plugins: plugins}, nil
}
