package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"incidents-dashboard/config"
	"incidents-dashboard/core/utils"
)

const ProviderFirebase = "firebase"

// TokenVerifier is satisfied by the Admin SDK auth client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseProvider signs in with email/password through the identity
// toolkit relying party API. When a verifier is set, the returned ID token
// is verified before the identity is trusted.
type FirebaseProvider struct {
	toolkit  *identitytoolkit.Service
	timeout  time.Duration
	verifier TokenVerifier
	logger   *utils.Logger
	now      func() time.Time
}

func NewFirebaseProvider(ctx context.Context, cfg config.FirebaseConfig, verifier TokenVerifier, logger *utils.Logger) (*FirebaseProvider, error) {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if endpoint := strings.TrimSpace(cfg.AuthEndpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(endpoint, "/")+"/"))
	}
	toolkit, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit: %w", err)
	}
	return &FirebaseProvider{
		toolkit:  toolkit,
		timeout:  timeout,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (p *FirebaseProvider) Name() string { return ProviderFirebase }

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	out, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(callCtx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if !errors.As(err, &gerr) || gerr.Message == "" {
			return nil, newAuthError(Unknown, err)
		}
		kind := kindFromProviderCode(gerr.Message)
		code, _, _ := strings.Cut(gerr.Message, " ")
		p.logger.Printf("firebase sign-in rejected email=%s code=%s", utils.NormalizeEmail(email), code)
		return nil, &AuthError{Kind: kind, Code: code}
	}
	if out.LocalId == "" {
		return nil, newAuthError(Unknown, errors.New("identity toolkit returned no user id"))
	}
	id := &Identity{
		UID:         out.LocalId,
		Email:       out.Email,
		DisplayName: out.DisplayName,
		Provider:    ProviderFirebase,
	}
	if out.ExpiresIn > 0 {
		id.ExpiresAt = p.now().UTC().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	if p.verifier != nil {
		tok, err := p.verifier.VerifyIDToken(ctx, out.IdToken)
		if err != nil {
			return nil, newAuthError(Unknown, fmt.Errorf("verify id token: %w", err))
		}
		if tok.UID != out.LocalId {
			return nil, newAuthError(Unknown, errors.New("id token subject mismatch"))
		}
		if tok.Expires > 0 {
			id.ExpiresAt = time.Unix(tok.Expires, 0).UTC()
		}
	}
	return id, nil
}
