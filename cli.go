package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cliEnv is shared by every subcommand once the root pre-run has loaded it.
type cliEnv struct {
	cfg *Config
	log zerolog.Logger
}

func (e *cliEnv) openMigratedDB(ctx context.Context) (*sqlx.DB, error) {
	db, err := openDB(e.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := migrateDB(ctx, db, e.log); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newRootCmd() *cobra.Command {
	e := &cliEnv{}

	root := &cobra.Command{
		Use:           "eventboard",
		Short:         "Events, comments and accounts behind a login",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			e.cfg, e.log = cfg, log
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := e.openMigratedDB(cmd.Context())
				if err != nil {
					return err
				}
				return db.Close()
			},
		},
		newUsersCmd(e),
	)

	return root
}

func newUsersCmd(e *cliEnv) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	users.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List users",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := e.openMigratedDB(cmd.Context())
				if err != nil {
					return err
				}
				defer db.Close()

				list, err := NewUserStore(db).List(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tJOINED")
				for _, u := range list {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.DateJoined.Format(time.DateTime))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "delete <username>",
			Short: "Delete a user with their events, comments and sessions",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := e.openMigratedDB(cmd.Context())
				if err != nil {
					return err
				}
				defer db.Close()

				if err := NewUserStore(db).Delete(cmd.Context(), args[0]); err != nil {
					return err
				}

				e.log.Info().Str("username", args[0]).Msg("user deleted")
				fmt.Fprintf(cmd.OutOrStdout(), "User '%s' deleted\n", args[0])
				return nil
			},
		},
	)

	return users
}

func (e *cliEnv) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := e.openMigratedDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := cleanupExpiredSessions(ctx, db); err != nil {
		e.log.Error().Err(err).Msg("cleaning up expired sessions")
	}

	app := NewApp(db, e.cfg, e.log)

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := cleanupExpiredSessions(ctx, db); err != nil {
					e.log.Error().Err(err).Msg("cleaning up expired sessions")
				}
				app.limiter.prune()
			}
		}
	}()

	srv := &http.Server{
		Addr:              e.cfg.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info().Str("addr", e.cfg.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
