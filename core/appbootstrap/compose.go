package appbootstrap

import (
	"context"
	"fmt"

	"incidents-dashboard/api"
	"incidents-dashboard/config"
	"incidents-dashboard/core/access"
	"incidents-dashboard/core/auth"
	"incidents-dashboard/core/firebaseapp"
	"incidents-dashboard/core/incidents"
	"incidents-dashboard/core/janitor"
	"incidents-dashboard/core/notify"
	"incidents-dashboard/core/shell"
	"incidents-dashboard/core/store"
	"incidents-dashboard/core/utils"
	"incidents-dashboard/gui"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	fetcher    *incidents.Fetcher
	firebase   *firebaseapp.Service
	workers    []api.BackgroundWorker
}

func composeRuntime(ctx context.Context, cfg *config.AppConfig, db *store.DB, logger *utils.Logger) (*runtimeComposition, error) {
	users := store.NewUsersStore(db)
	sessions := auth.NewSessionManager(store.NewSessionsStore(db), cfg, logger)

	fb, err := firebaseFor(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	provider, err := providerFor(ctx, cfg, fb, users, logger)
	if err != nil {
		_ = fb.Close()
		return nil, err
	}
	fetcher := incidents.NewFetcher(sourceFor(cfg, fb, db), cfg.Incidents.Collection, cfg.FetchTimeout(), logger)

	registry := shell.NewRegistry(func(deviceID string) *shell.Shell {
		return shell.New(
			deviceID,
			auth.NewGate(provider, sessions, logger),
			shell.NewWorkspace(fetcher),
			notify.NewCenter(cfg.NotificationTTL()),
			shell.Options{Location: cfg.Location(), Lang: cfg.UI.Lang, Logger: logger},
		)
	}, cfg.Security.ShellIdleTTL, logger)

	enforcer, err := access.New()
	if err != nil {
		_ = fb.Close()
		return nil, err
	}
	tmpl, err := gui.Templates()
	if err != nil {
		_ = fb.Close()
		return nil, fmt.Errorf("templates: %w", err)
	}

	var workers []api.BackgroundWorker
	if cfg.Janitor.Enabled {
		workers = append(workers, janitor.New(cfg.Janitor, registry, sessions, logger))
	}
	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			Shells:    registry,
			Access:    enforcer,
			Templates: tmpl,
			Schema: func(ctx context.Context) (int64, error) {
				return store.SchemaVersion(ctx, db)
			},
		},
		fetcher:  fetcher,
		firebase: fb,
		workers:  workers,
	}, nil
}

// firebaseFor starts the Admin SDK only when a component needs it.
func firebaseFor(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*firebaseapp.Service, error) {
	if cfg.Identity.Provider != auth.ProviderFirebase && cfg.Incidents.Source != "firestore" {
		return nil, nil
	}
	return firebaseapp.New(ctx, cfg.Identity.Firebase, logger)
}

func providerFor(ctx context.Context, cfg *config.AppConfig, fb *firebaseapp.Service, users store.UsersStore, logger *utils.Logger) (auth.Provider, error) {
	if cfg.Identity.Provider != auth.ProviderFirebase {
		return auth.NewLocalProvider(users, logger), nil
	}
	var verifier auth.TokenVerifier
	if fb != nil && fb.Auth != nil {
		verifier = fb.Auth
	}
	p, err := auth.NewFirebaseProvider(ctx, cfg.Identity.Firebase, verifier, logger)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func sourceFor(cfg *config.AppConfig, fb *firebaseapp.Service, db *store.DB) incidents.Source {
	if cfg.Incidents.Source == "firestore" && fb != nil {
		return incidents.NewFirestoreSource(fb.Firestore)
	}
	return store.NewSQLSource(db)
}
