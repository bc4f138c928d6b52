package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

var ErrConflict = errors.New("conflict")

// User is a local identity; the firebase provider never touches this table.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UsersStore interface {
	Create(ctx context.Context, u *User) (string, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

type usersStore struct {
	db *DB
}

func NewUsersStore(db *DB) UsersStore {
	return &usersStore{db: db}
}

func (s *usersStore) Create(ctx context.Context, u *User) (string, error) {
	if existing, err := s.FindByEmail(ctx, u.Email); err != nil {
		return "", err
	} else if existing != nil {
		return "", ErrConflict
	}
	if u.ID == "" {
		u.ID = uuid.Must(uuid.NewV4()).String()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users(id, email, display_name, password_hash, disabled, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?)`),
		u.ID, strings.ToLower(strings.TrimSpace(u.Email)), u.DisplayName, u.PasswordHash, boolToInt(u.Disabled), now, now)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// FindByEmail returns nil, nil when no user matches.
func (s *usersStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, email, display_name, password_hash, disabled, created_at, updated_at
		FROM users WHERE email=?`), strings.ToLower(strings.TrimSpace(email)))
	var u User
	var disabled int
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &disabled, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Disabled = disabled == 1
	return &u, nil
}

func (s *usersStore) SetDisabled(ctx context.Context, id string, disabled bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET disabled=?, updated_at=? WHERE id=?`), boolToInt(disabled), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
