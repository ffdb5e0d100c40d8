// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// seosync upserts regional SEO page metadata from a JSON or YAML seed file.
// Runs are idempotent: re-running the same file only refreshes timestamps.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/olegiv/blockcms/internal/config"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/store"
)

var (
	appVersion = "dev"

	seedFile string
	dbPath   string
	verbose  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "seosync",
		Short:   "Sync regional SEO pages from a seed file",
		Long:    "seosync reads a JSON or YAML seed file of regional SEO page metadata\nand upserts it into the blockcms database, keyed by region slug.",
		Version: appVersion,
		RunE:    runSync,
	}

	rootCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed file path (.json, .yaml or .yml) (required)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: BLOCKCMS_DB_PATH)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Log each synced entry")
	_ = rootCmd.MarkFlagRequired("file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		dbPath = cfg.DBPath
	}

	entries, err := readSeedFile(seedFile)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("seed file %s contains no entries", seedFile)
	}

	db, err := store.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	syncService := service.NewSeoSyncService(db, logger)
	result, err := syncService.Sync(cmd.Context(), entries)
	if err != nil {
		return fmt.Errorf("syncing seo pages: %w", err)
	}

	fmt.Printf("Run %s: %d created, %d updated, %d errors\n",
		result.RunID, result.Created, result.Updated, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Printf("  error: %s: %s\n", e.Slug, e.Message)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d entries failed to sync", len(result.Errors))
	}
	return nil
}

// readSeedFile parses the seed file by extension. JSON and YAML both decode
// into the same entry shape.
func readSeedFile(path string) ([]service.SeoSeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var entries []service.SeoSeedEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing JSON seed file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing YAML seed file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file extension: %s", filepath.Ext(path))
	}

	return entries, nil
}
