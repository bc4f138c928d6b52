package firebaseapp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"incidents-dashboard/config"
	"incidents-dashboard/core/utils"
)

// Service bundles the Admin SDK clients shared by the identity provider and
// the firestore incident source.
type Service struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

func New(ctx context.Context, cfg config.FirebaseConfig, logger *utils.Logger) (*Service, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	svc := &Service{App: app}
	// token verification needs service account credentials
	if cfg.CredentialsFile != "" {
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase auth: %w", err)
		}
		svc.Auth = authClient
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: %w", err)
	}
	svc.Firestore = fs
	logger.Printf("firebase initialized project=%s verify_tokens=%t", cfg.ProjectID, svc.Auth != nil)
	return svc, nil
}

func (s *Service) Close() error {
	if s == nil || s.Firestore == nil {
		return nil
	}
	return s.Firestore.Close()
}
