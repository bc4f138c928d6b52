package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	"incidents-dashboard/config"
	"incidents-dashboard/core/store"
	"incidents-dashboard/core/utils"
)

func setupAuthEnv(t *testing.T) (*SessionManager, store.UsersStore, *config.AppConfig) {
	t.Helper()
	cfg := &config.AppConfig{
		SessionTTL: time.Hour,
		DB:         config.DBConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "auth.db")},
	}
	logger := utils.NewNopLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return NewSessionManager(store.NewSessionsStore(db), cfg, logger), store.NewUsersStore(db), cfg
}

func addUser(t *testing.T, users store.UsersStore, email, password string) string {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	id, err := users.Create(context.Background(), &store.User{Email: email, PasswordHash: hash})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestLocalProviderErrorKinds(t *testing.T) {
	_, users, _ := setupAuthEnv(t)
	id := addUser(t, users, "ana@example.com", "secreto")
	p := NewLocalProvider(users, nil)
	ctx := context.Background()

	if _, err := p.SignIn(ctx, "nadie@example.com", "x"); KindOf(err) != UserNotFound {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := p.SignIn(ctx, "ana@example.com", "mal"); KindOf(err) != InvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	got, err := p.SignIn(ctx, "ANA@example.com", "secreto")
	if err != nil || got.UID != id {
		t.Fatalf("expected success, got %+v %v", got, err)
	}
	if err := users.SetDisabled(ctx, id, true); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := p.SignIn(ctx, "ana@example.com", "secreto"); KindOf(err) != AccountDisabled {
		t.Fatalf("expected disabled, got %v", err)
	}
}

func TestGateObserversSeeTransitions(t *testing.T) {
	sm, users, _ := setupAuthEnv(t)
	addUser(t, users, "ana@example.com", "secreto")
	g := NewGate(NewLocalProvider(users, nil), sm, nil)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []bool
	cancel := g.Observe(func(s *Session) {
		mu.Lock()
		seen = append(seen, s != nil)
		mu.Unlock()
	})
	if _, err := g.SignIn(ctx, "ana@example.com", "mal"); KindOf(err) != InvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if g.Current() != nil {
		t.Fatalf("failed sign-in must not change state")
	}
	sess, err := g.SignIn(ctx, "ana@example.com", "secreto")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.DisplayName != "ana" {
		t.Fatalf("expected display name fallback, got %q", sess.DisplayName)
	}
	if err := g.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	cancel()
	if _, err := g.SignIn(ctx, "ana@example.com", "secreto"); err != nil {
		t.Fatalf("sign in again: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	want := []bool{false, true, false}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestGateMissingFields(t *testing.T) {
	sm, users, _ := setupAuthEnv(t)
	g := NewGate(NewLocalProvider(users, nil), sm, nil)
	if _, err := g.SignIn(context.Background(), "  ", "x"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
	if _, err := g.SignIn(context.Background(), "a@b.c", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected missing fields, got %v", err)
	}
}

func TestGateExpireAndRestore(t *testing.T) {
	sm, users, _ := setupAuthEnv(t)
	addUser(t, users, "ana@example.com", "secreto")
	ctx := context.Background()
	g := NewGate(NewLocalProvider(users, nil), sm, nil)
	sess, err := g.SignIn(ctx, "ana@example.com", "secreto")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	other := NewGate(NewLocalProvider(users, nil), sm, nil)
	restored, err := other.Restore(ctx, sess.ID)
	if err != nil || restored == nil || restored.UID != sess.UID {
		t.Fatalf("restore: %+v %v", restored, err)
	}

	if g.Expire(ctx, sess.ExpiresAt.Add(-time.Second)) {
		t.Fatalf("session should still be valid")
	}
	if !g.Expire(ctx, sess.ExpiresAt) {
		t.Fatalf("session should expire at ExpiresAt")
	}
	if g.Current() != nil {
		t.Fatalf("expired gate must be signed out")
	}
	if again, _ := NewGate(nil, sm, nil).Restore(ctx, sess.ID); again != nil {
		t.Fatalf("expired session must not be restorable")
	}
}

type fakeVerifier struct{ uid string }

func (f fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	if idToken != "id-token" {
		return nil, errors.New("bad token")
	}
	return &fbauth.Token{UID: f.uid, Expires: time.Now().Add(30 * time.Minute).Unix()}, nil
}

func identityToolkit(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verifyPassword" || r.URL.Query().Get("key") != "k" {
			http.Error(w, "bad request", http.StatusNotFound)
			return
		}
		var req struct {
			Email             string `json:"email"`
			ReturnSecureToken bool   `json:"returnSecureToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.ReturnSecureToken {
			http.Error(w, "missing returnSecureToken", http.StatusBadRequest)
			return
		}
		codes := map[string]string{
			"nobody@example.com": "EMAIL_NOT_FOUND",
			"bad@example.com":    "INVALID_LOGIN_CREDENTIALS",
			"email":              "INVALID_EMAIL",
			"off@example.com":    "USER_DISABLED",
			"spam@example.com":   "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled",
			"weird@example.com":  "OPERATION_NOT_ALLOWED",
		}
		if code, ok := codes[req.Email]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 400, "message": code},
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"localId":   "uid-1",
			"email":     req.Email,
			"idToken":   "id-token",
			"expiresIn": "3600",
		})
	}))
}

func newTestFirebaseProvider(t *testing.T, endpoint string, verifier TokenVerifier) *FirebaseProvider {
	t.Helper()
	p, err := NewFirebaseProvider(context.Background(), config.FirebaseConfig{APIKey: "k", AuthEndpoint: endpoint}, verifier, nil)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	return p
}

func TestFirebaseProviderMapsErrorCodes(t *testing.T) {
	srv := identityToolkit(t)
	defer srv.Close()
	p := newTestFirebaseProvider(t, srv.URL, nil)
	cases := map[string]ErrorKind{
		"nobody@example.com": UserNotFound,
		"bad@example.com":    InvalidCredentials,
		"email":              InvalidCredentials,
		"off@example.com":    AccountDisabled,
		"spam@example.com":   RateLimited,
		"weird@example.com":  Unknown,
	}
	for email, want := range cases {
		_, err := p.SignIn(context.Background(), email, "pw")
		if got := KindOf(err); got != want {
			t.Fatalf("%s: expected %s, got %s (%v)", email, want, got, err)
		}
	}
	_, err := p.SignIn(context.Background(), "email", "pw")
	if msg := Describe("es", err); msg != "Email inválido" {
		t.Fatalf("unexpected invalid email message %q", msg)
	}
}

func TestFirebaseProviderSuccessUsesVerifiedExpiry(t *testing.T) {
	srv := identityToolkit(t)
	defer srv.Close()
	p := newTestFirebaseProvider(t, srv.URL, fakeVerifier{uid: "uid-1"})
	id, err := p.SignIn(context.Background(), "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if id.UID != "uid-1" || id.Provider != ProviderFirebase {
		t.Fatalf("unexpected identity %+v", id)
	}
	if d := time.Until(id.ExpiresAt); d > 31*time.Minute || d < 29*time.Minute {
		t.Fatalf("expected verified token expiry, got %s", d)
	}

	mismatch := newTestFirebaseProvider(t, srv.URL, fakeVerifier{uid: "other"})
	if _, err := mismatch.SignIn(context.Background(), "ana@example.com", "pw"); KindOf(err) != Unknown {
		t.Fatalf("expected unknown on subject mismatch, got %v", err)
	}
}

func TestSessionExpiryCappedByProvider(t *testing.T) {
	sm, _, _ := setupAuthEnv(t)
	soon := time.Now().UTC().Add(10 * time.Minute)
	sess, err := sm.Create(context.Background(), &Identity{UID: "u", Email: "x@y.z", Provider: "firebase", ExpiresAt: soon})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sess.ExpiresAt.Equal(soon) {
		t.Fatalf("expected provider expiry, got %s", sess.ExpiresAt)
	}
}

func TestMessagesAndLanguage(t *testing.T) {
	if Message("es", RateLimited) != "Demasiados intentos. Intenta más tarde" {
		t.Fatalf("unexpected spanish message")
	}
	if Message("en-GB", UserNotFound) != "User not found" {
		t.Fatalf("unexpected english message")
	}
	if Message("fr", Unknown) != "Error de autenticación" {
		t.Fatalf("expected spanish fallback")
	}
	if PreferredLang("en-US,en;q=0.9") != "en" || PreferredLang("") != "es" || PreferredLang("de, es;q=0.5") != "es" {
		t.Fatalf("unexpected language selection")
	}
}

func TestPreferredLangHonoursQuality(t *testing.T) {
	cases := map[string]string{
		"en;q=0.1, es;q=0.9": "es",
		"es;q=0.2, en;q=0.8": "en",
		"fr-FR, en;q=0.5":    "en",
		"fr, de;q=0.7":       "es",
		"es-MX":              "es",
		";;;":                "es",
	}
	for header, want := range cases {
		if got := PreferredLang(header); got != want {
			t.Fatalf("PreferredLang(%q) = %q, want %q", header, got, want)
		}
	}
}
