package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"who-said-that/internal/config"
	"who-said-that/internal/db"
	"who-said-that/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()
	var logger *zap.Logger
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the Postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
			}
			cfg := config.Load(v)
			var err error
			logger, err = logging.New(cfg.LogLevel, cfg.DevMode)
			return err
		},
	}
	root.PersistentFlags().String(config.KeyDatabaseURL, "", "postgres DSN (env: DATABASE_URL)")
	if err := v.BindPFlag(config.KeyDatabaseURL, root.PersistentFlags().Lookup(config.KeyDatabaseURL)); err != nil {
		panic(err)
	}

	databaseURL := func() (string, error) {
		cfg := config.Load(v)
		if cfg.DBDriver == config.DriverSQLite {
			return "", errors.New("sql migrations target postgres; sqlite uses auto-migrate")
		}
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return "", errors.New("DATABASE_URL is not set")
		}
		return cfg.DatabaseURL, nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			if err := db.MigrateUp(dsn); err != nil {
				return err
			}
			logger.Info("database migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			if err := db.MigrateDown(dsn, steps); err != nil {
				return err
			}
			logger.Info("database migrations rolled back", zap.Int("steps", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			current, dirty, err := db.MigrationVersion(dsn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", current, dirty)
			return nil
		},
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Scaffold a new up/down migration pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			upPath, downPath, err := createMigration(db.MigrationsDir, name, time.Now().UTC())
			if err != nil {
				return err
			}
			logger.Info("migration created", zap.String("up", upPath), zap.String("down", downPath))
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "migration name")

	root.AddCommand(up, down, version, create)
	return root
}

func createMigration(dir, name string, now time.Time) (string, string, error) {
	if name == "" {
		return "", "", errors.New("migration name is required")
	}
	if strings.ContainsAny(name, " ") {
		return "", "", errors.New("migration name must not contain spaces")
	}

	base := fmt.Sprintf("%s_%s", now.Format("20060102150405"), name)
	upPath := filepath.Join(dir, base+".up.sql")
	downPath := filepath.Join(dir, base+".down.sql")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create migrations dir: %w", err)
	}
	if err := writeFile(upPath, "-- up migration\n"); err != nil {
		return "", "", fmt.Errorf("create up migration: %w", err)
	}
	if err := writeFile(downPath, "-- down migration\n"); err != nil {
		return "", "", fmt.Errorf("create down migration: %w", err)
	}
	return upPath, downPath, nil
}

func writeFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
