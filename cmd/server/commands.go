package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrhexvel/ezgu/internal/database"
	"github.com/mrhexvel/ezgu/internal/notify"
	"github.com/mrhexvel/ezgu/internal/router"
	"github.com/mrhexvel/ezgu/internal/service"
	"github.com/mrhexvel/ezgu/internal/tokenstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := database.Migrate(a.db); err != nil {
				return err
			}

			revoker, closeRevoker, err := tokenstore.Open(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer closeRevoker()

			engine := router.NewEngine(a.cfg, a.db, a.log, revoker, notify.NewLogNotifier(a.log))
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
				Handler:           engine,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("server starting", zap.String("addr", srv.Addr), zap.String("mode", a.cfg.Server.Mode))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server run: %w", err)
			case <-ctx.Done():
			}

			a.log.Info("server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(*cobra.Command, []string) error {
			if err := database.Migrate(a.db); err != nil {
				return err
			}
			a.log.Info("migration complete")
			return nil
		},
	}
}

func newSeedCommand(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, achievements and an admin account from YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := database.Migrate(a.db); err != nil {
				return err
			}
			fh, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer fh.Close()

			seed, err := service.ParseSeed(fh)
			if err != nil {
				return err
			}
			res, err := service.NewSeedService(a.db, a.log).Apply(cmd.Context(), seed)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}

func newReconcileCommand(a *app) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "reconcile-hours",
		Short: "Compare stored hour totals with the hours log",
		Long: `Recomputes participant and user hour totals from the hours log and
prints every total that disagrees. With --fix the stored totals and user
levels are overwritten with the recomputed values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := service.NewHoursService(a.db, notify.NoopNotifier{}, a.log)
			drifts, err := svc.Reconcile(cmd.Context(), fix)
			if err != nil {
				return err
			}
			a.log.Info("reconcile finished", zap.Int("drifts", len(drifts)), zap.Bool("fixed", fix))
			return printJSON(cmd, drifts)
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "overwrite drifting totals")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
