package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/auth"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/config"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/credential"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/db"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/logger"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
	"gorm.io/gorm"
)

// runtime is everything a command needs, built from the configuration.
type runtime struct {
	db       *gorm.DB
	svc      *services.Services
	sessions *auth.Sessions
	flows    *credential.Manager
	log      zerolog.Logger
}

// bootstrap opens the configured store and wires the services. With seed set, the demo
// data is created unless it already exists.
func bootstrap(ctx context.Context, cfg *config.Config, seed bool) (*runtime, error) {
	rt := &runtime{log: logger.WithComponent("bootstrap")}

	var (
		repos *services.Repositories
		taxes []models.Tax
	)
	if cfg.Database.Persistent() {
		conn, err := db.Open(cfg.Database, rt.log)
		if err != nil {
			return nil, err
		}
		rt.db = conn
		if err := db.Migrate(conn, cfg.Database, cfg.App.Migrations, rt.log); err != nil {
			rt.Close()
			return nil, err
		}
		if err := db.SeedTaxes(conn); err != nil {
			rt.Close()
			return nil, fmt.Errorf("seed taxes: %w", err)
		}
		if taxes, err = db.LoadTaxes(conn); err != nil {
			rt.Close()
			return nil, fmt.Errorf("load taxes: %w", err)
		}
		repos = services.NewGormRepositories(conn)
	} else {
		repos = services.NewMemoryRepositories()
		taxes = models.DefaultTaxes()
	}

	rt.svc = services.New(repos, billing.NewTaxTable(taxes...), services.WithLogger(logger.WithComponent("services")))
	if seed {
		if err := rt.svc.Seed(ctx, cfg.App.SeedOperatorPassword); err != nil {
			rt.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	rt.sessions = auth.NewSessions(cfg.Auth.Secret, cfg.Auth.SessionTTL)
	credLog := logger.WithComponent("credential")
	rt.flows = credential.NewManager(rt.svc.Users, credential.LogNotifier{Log: credLog}, credential.WithLogger(credLog))
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.db == nil {
		return
	}
	if err := db.Close(rt.db); err != nil {
		rt.log.Error().Err(err).Msg("close database")
	}
}
