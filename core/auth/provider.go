package auth

import (
	"context"
	"time"
)

// Identity is what a provider vouches for after a successful sign-in.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Provider    string
	// ExpiresAt is the provider-reported credential expiry; zero means none.
	ExpiresAt time.Time
}

type Provider interface {
	Name() string
	SignIn(ctx context.Context, email, password string) (*Identity, error)
}
