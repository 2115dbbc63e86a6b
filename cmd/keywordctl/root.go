package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/spacesedan/courtsense/config"
	"github.com/spacesedan/courtsense/internal/db"
	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/logging"
)

// app holds what the commands share once the store is connected.
type app struct {
	settings config.Settings
	accessor *keywords.Accessor
	pool     *pgxpool.Pool
	out      io.Writer
}

func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

var (
	flagEnv   string
	flagActor string
)

// newRootCmd builds the CLI. A non-nil preset skips connecting to the
// database and is used as is.
func newRootCmd(preset *app) *cobra.Command {
	var a *app

	rootCmd := &cobra.Command{
		Use:           "keywordctl",
		Short:         "Manage the sentiment keyword lexicon",
		Long:          "keywordctl lists, edits and exports the keywords that drive rule-based review sentiment scoring.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if preset != nil {
				a = preset
				if a.out == nil {
					a.out = cmd.OutOrStdout()
				}
				return nil
			}
			if offline, _ := cmd.Flags().GetBool("offline"); offline {
				a = &app{out: cmd.OutOrStdout()}
				return nil
			}

			var err error
			a, err = connect(cmd.Context(), cmd.OutOrStdout())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if preset == nil && a != nil {
				a.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", envOr("APP_ENV", "dev"), "environment whose config/envs file is loaded")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", envOr("USER", "keywordctl"), "admin id recorded on changes")

	get := func() *app { return a }
	rootCmd.AddCommand(
		newListCmd(get),
		newAddCmd(get),
		newUpdateCmd(get),
		newDeleteCmd(get),
		newSetActiveCmd(get, true),
		newSetActiveCmd(get, false),
		newExportCmd(get),
		newReseedCmd(get),
		newCategoriesCmd(get),
		newAnalyzeCmd(get),
		newMigrateCmd(get),
	)
	return rootCmd
}

func connect(ctx context.Context, out io.Writer) (*app, error) {
	config.LoadEnv(flagEnv)
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.InitLogger(settings.LogLevel)

	pool, err := db.InitDB(ctx, settings.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to keyword store: %w", err)
	}

	return &app{
		settings: settings,
		accessor: keywords.NewAccessor(db.NewKeywordRepository(pool), keywords.WithCacheTTL(settings.KeywordCacheTTL)),
		pool:     pool,
		out:      out,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid keyword id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// describeError turns accessor errors into operator facing messages.
func describeError(err error) error {
	var verr *keywords.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr
	case errors.Is(err, keywords.ErrKeywordNotFound):
		return errors.New("keyword not found")
	case errors.Is(err, keywords.ErrDuplicateKeyword):
		return errors.New("keyword already exists for this type and language")
	}
	return err
}
