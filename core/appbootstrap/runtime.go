package appbootstrap

import (
	"context"
	"errors"

	"incidents-dashboard/api"
	"incidents-dashboard/config"
	"incidents-dashboard/core/firebaseapp"
	"incidents-dashboard/core/incidents"
	"incidents-dashboard/core/store"
	"incidents-dashboard/core/utils"
)

// Runtime owns every long-lived resource of the service.
type Runtime struct {
	Server  *api.Server
	Fetcher *incidents.Fetcher

	db       *store.DB
	firebase *firebaseapp.Service
}

// OpenDB connects to the configured database and applies pending migrations.
func OpenDB(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*store.DB, error) {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewRuntime(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*Runtime, error) {
	db, err := OpenDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	comp, err := composeRuntime(ctx, cfg, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Runtime{
		Server:   api.NewServer(cfg, comp.serverDeps, logger, comp.workers...),
		Fetcher:  comp.fetcher,
		db:       db,
		firebase: comp.firebase,
	}, nil
}

func (r *Runtime) Close() error {
	var errs []error
	if r.firebase != nil {
		errs = append(errs, r.firebase.Close())
	}
	if r.db != nil {
		errs = append(errs, r.db.Close())
	}
	return errors.Join(errs...)
}
