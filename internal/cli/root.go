// Package cli implements the galleryctl maintenance commands.
package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/pkordes/case-gallery/internal/config"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

// NewRootCmd builds the galleryctl command tree. Configuration is read the
// same way the server reads it (.env, GALLERY_CONFIG, environment).
func NewRootCmd() *cobra.Command {
	a := &app{}
	var verbose bool

	root := &cobra.Command{
		Use:           "galleryctl",
		Short:         "Maintenance commands for the case gallery",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			a.cfg = cfg
			a.out = cmd.OutOrStdout()
			a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newCacheCmd(a),
		newURLCmd(a),
	)
	return root
}

// openPool connects to DATABASE_URL and verifies the connection.
func (a *app) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}
	return pool, nil
}

// withSQLDB runs fn against a database/sql handle over a fresh pool, for goose.
func (a *app) withSQLDB(ctx context.Context, fn func(*sql.DB) error) error {
	pool, err := a.openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return fn(db)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
