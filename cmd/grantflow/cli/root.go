package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpggio/grantflow/internal/app"
	"github.com/rpggio/grantflow/internal/config"
	"github.com/rpggio/grantflow/internal/events"
	"github.com/rpggio/grantflow/internal/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

// NewRootCmd builds the grantflow command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grantflow",
		Short:         "Token treasury with payment streams and vesting schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $GRANTFLOW_CONFIG_PATH)")

	root.AddCommand(ServeCmd())
	root.AddCommand(MigrateCmd())
	root.AddCommand(DepositCmd())
	root.AddCommand(APIKeyCmd())
	return root
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

// GetConfigPath returns the --config flag value.
func GetConfigPath() string {
	return cfgPath
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openDB opens the database at path and brings its schema up to date.
func openDB(path string) (*sqlite.DB, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// withServices opens the configured database and runs fn against it without an event publisher.
func withServices(ctx context.Context, cfg config.Config, logger zerolog.Logger, fn func(context.Context, *app.Services) error) error {
	db, err := openDB(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, app.NewServices(db, events.NopPublisher{}, logger))
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
