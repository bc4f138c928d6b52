package auth

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"incidents-dashboard/config"
	"incidents-dashboard/core/store"
	"incidents-dashboard/core/utils"
)

type Session struct {
	ID          string    `json:"-"`
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Provider    string    `json:"provider"`
	CSRFToken   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

type SessionManager struct {
	store  store.SessionStore
	cfg    *config.AppConfig
	logger *utils.Logger
	now    func() time.Time
}

func NewSessionManager(store store.SessionStore, cfg *config.AppConfig, logger *utils.Logger) *SessionManager {
	return &SessionManager{store: store, cfg: cfg, logger: logger, now: utils.NowUTC}
}

// Create persists a session for id. The configured TTL applies unless the
// provider reported an earlier credential expiry.
func (m *SessionManager) Create(ctx context.Context, id *Identity) (*Session, error) {
	csrf, err := utils.RandString(32)
	if err != nil {
		return nil, err
	}
	now := m.now()
	expires := now.Add(m.cfg.EffectiveSessionTTL())
	if !id.ExpiresAt.IsZero() && id.ExpiresAt.Before(expires) {
		expires = id.ExpiresAt
	}
	sess := &Session{
		ID:          uuid.Must(uuid.NewV4()).String(),
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: utils.DisplayNameFor(id.DisplayName, id.Email),
		Provider:    id.Provider,
		CSRFToken:   csrf,
		CreatedAt:   now,
		LastSeenAt:  now,
		ExpiresAt:   expires,
	}
	if err := m.store.SaveSession(ctx, toRecord(sess)); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns nil for unknown or expired sessions.
func (m *SessionManager) Get(ctx context.Context, sessID string) (*Session, error) {
	rec, err := m.store.GetSession(ctx, sessID)
	if err != nil || rec == nil {
		return nil, err
	}
	sess := fromRecord(rec)
	if sess.Expired(m.now()) {
		return nil, nil
	}
	return sess, nil
}

func (m *SessionManager) Refresh(ctx context.Context, sessID string) error {
	return m.store.UpdateActivity(ctx, sessID, m.now(), m.cfg.EffectiveSessionTTL())
}

func (m *SessionManager) Delete(ctx context.Context, sessID string) error {
	return m.store.DeleteSession(ctx, sessID)
}

func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

func toRecord(s *Session) *store.SessionRecord {
	return &store.SessionRecord{
		ID:          s.ID,
		UID:         s.UID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
		Provider:    s.Provider,
		CSRFToken:   s.CSRFToken,
		CreatedAt:   s.CreatedAt,
		LastSeenAt:  s.LastSeenAt,
		ExpiresAt:   s.ExpiresAt,
	}
}

func fromRecord(r *store.SessionRecord) *Session {
	return &Session{
		ID:          r.ID,
		UID:         r.UID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Provider:    r.Provider,
		CSRFToken:   r.CSRFToken,
		CreatedAt:   r.CreatedAt,
		LastSeenAt:  r.LastSeenAt,
		ExpiresAt:   r.ExpiresAt,
	}
}
