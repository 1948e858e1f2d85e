package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/config"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/db"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config
	root := &cobra.Command{
		Use:           "bpsp-portal",
		Short:         "Merchant and operator billing portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load environment variables from .env file
			_ = godotenv.Load()
			cfg = config.Load()
			if err := logger.Setup(cfg.Log); err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	})

	var useSQL bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.Database.Persistent() {
				return fmt.Errorf("migrate needs STORE_DRIVER=sqlite or postgres, got %q", cfg.Database.Driver)
			}
			log := logger.WithComponent("migrate")
			conn, err := db.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close(conn)
			if err := db.Migrate(conn, cfg.Database, useSQL || cfg.App.Migrations, log); err != nil {
				return err
			}
			log.Info().Msg("migrations completed successfully")
			return nil
		},
	}
	migrateCmd.Flags().BoolVar(&useSQL, "sql", false, "apply the embedded SQL migrations (postgres only)")
	root.AddCommand(migrateCmd)

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Seed taxes, the operator account and demo data, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.svc.Seed(cmd.Context(), cfg.App.SeedOperatorPassword); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			rt.log.Info().Msg("seeding completed successfully")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "run-schedules",
		Short: "Issue every invoice whose auto-issuance schedule is due, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), cfg, cfg.App.Seed)
			if err != nil {
				return err
			}
			defer rt.Close()
			res := rt.svc.Schedules.RunDue(cmd.Context())
			if !res.Success {
				return errors.New(res.Message)
			}
			rt.log.Info().
				Int("issued", len(res.Data.Issued)).
				Int("skipped", res.Data.Skipped).
				Int("failures", len(res.Data.Failures)).
				Msg("schedules run")
			return nil
		},
	})
	return root
}

func serve(ctx context.Context, cfg *config.Config) error {
	rt, err := bootstrap(ctx, cfg, cfg.App.Seed)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := NewApp(rt.svc, rt.sessions, rt.flows, logger.WithComponent("http"))
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(app, logger.WithComponent("http")),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info().
			Str("port", cfg.Server.Port).
			Str("store", cfg.Database.Driver).
			Bool("dev", cfg.App.Dev).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-quit:
		rt.log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.log.Error().Err(err).Msg("error during shutdown")
	}
	rt.log.Info().Msg("server stopped gracefully")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
