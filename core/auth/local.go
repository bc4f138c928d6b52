package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"incidents-dashboard/core/store"
	"incidents-dashboard/core/utils"
)

const ProviderLocal = "local"

// LocalProvider checks credentials against the users table.
type LocalProvider struct {
	users  store.UsersStore
	logger *utils.Logger
}

func NewLocalProvider(users store.UsersStore, logger *utils.Logger) *LocalProvider {
	return &LocalProvider{users: users, logger: logger}
}

func (p *LocalProvider) Name() string { return ProviderLocal }

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	user, err := p.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, newAuthError(Unknown, err)
	}
	if user == nil {
		return nil, &AuthError{Kind: UserNotFound}
	}
	if user.Disabled {
		return nil, &AuthError{Kind: AccountDisabled}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, &AuthError{Kind: InvalidCredentials}
		}
		return nil, newAuthError(Unknown, err)
	}
	return &Identity{
		UID:         user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Provider:    ProviderLocal,
	}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
