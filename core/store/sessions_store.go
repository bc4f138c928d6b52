package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SessionRecord struct {
	ID          string
	UID         string
	Email       string
	DisplayName string
	Provider    string
	CSRFToken   string
	CreatedAt   time.Time
	LastSeenAt  time.Time
	ExpiresAt   time.Time
}

type SessionStore interface {
	SaveSession(ctx context.Context, sess *SessionRecord) error
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
	UpdateActivity(ctx context.Context, id string, now time.Time, ttl time.Duration) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionsStore struct {
	db *DB
}

func NewSessionsStore(db *DB) SessionStore {
	return &sessionsStore{db: db}
}

func (s *sessionsStore) SaveSession(ctx context.Context, sess *SessionRecord) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO sessions(id, uid, email, display_name, provider, csrf_token, created_at, last_seen_at, expires_at)
		VALUES(?,?,?,?,?,?,?,?,?)`),
		sess.ID, sess.UID, sess.Email, sess.DisplayName, sess.Provider, sess.CSRFToken,
		sess.CreatedAt.UTC(), sess.LastSeenAt.UTC(), sess.ExpiresAt.UTC())
	return err
}

// GetSession returns nil, nil for an unknown id.
func (s *sessionsStore) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, uid, email, display_name, provider, csrf_token, created_at, last_seen_at, expires_at
		FROM sessions WHERE id=?`), id)
	var rec SessionRecord
	if err := row.Scan(&rec.ID, &rec.UID, &rec.Email, &rec.DisplayName, &rec.Provider, &rec.CSRFToken, &rec.CreatedAt, &rec.LastSeenAt, &rec.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// UpdateActivity slides last_seen_at but never extends expires_at past its stored value.
func (s *sessionsStore) UpdateActivity(ctx context.Context, id string, now time.Time, ttl time.Duration) error {
	rec, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	expires := rec.ExpiresAt
	if candidate := now.Add(ttl); ttl > 0 && candidate.Before(expires) {
		expires = candidate
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`UPDATE sessions SET last_seen_at=?, expires_at=? WHERE id=?`), now.UTC(), expires.UTC(), id)
	return err
}

func (s *sessionsStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE id=?`), id)
	return err
}

func (s *sessionsStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
