package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"incidents-dashboard/config"
	"incidents-dashboard/core/utils"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	cfg := &config.AppConfig{DB: config.DBConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "store.db")}}
	logger := utils.NewNopLogger()
	db, err := NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func TestRebindPostgres(t *testing.T) {
	d := &DB{Dialect: DialectPostgres}
	got := d.Rebind("SELECT a FROM t WHERE b=? AND c=?")
	if got != "SELECT a FROM t WHERE b=$1 AND c=$2" {
		t.Fatalf("unexpected rebind %q", got)
	}
	s := &DB{Dialect: DialectSQLite}
	if s.Rebind("x=?") != "x=?" {
		t.Fatalf("sqlite query must stay unchanged")
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupDB(t)
	sessions := NewSessionsStore(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	rec := &SessionRecord{
		ID: "s1", UID: "u1", Email: "ana@example.com", Provider: "local", CSRFToken: "tok",
		CreatedAt: now, LastSeenAt: now, ExpiresAt: now.Add(time.Hour),
	}
	if err := sessions.SaveSession(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := sessions.GetSession(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if got.Email != rec.Email || !got.ExpiresAt.Equal(rec.ExpiresAt) {
		t.Fatalf("unexpected record %+v", got)
	}
	later := now.Add(10 * time.Minute)
	if err := sessions.UpdateActivity(ctx, "s1", later, 3*time.Hour); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = sessions.GetSession(ctx, "s1")
	if !got.LastSeenAt.Equal(later) {
		t.Fatalf("last seen not updated: %s", got.LastSeenAt)
	}
	if !got.ExpiresAt.Equal(rec.ExpiresAt) {
		t.Fatalf("expiry must never be extended: %s", got.ExpiresAt)
	}
	n, err := sessions.DeleteExpired(ctx, now.Add(2*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("expected one expired session removed, got %d %v", n, err)
	}
	if got, _ := sessions.GetSession(ctx, "s1"); got != nil {
		t.Fatalf("session should be gone")
	}
	if err := sessions.UpdateActivity(ctx, "s1", later, time.Hour); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersCreateAndConflict(t *testing.T) {
	db := setupDB(t)
	users := NewUsersStore(db)
	ctx := context.Background()
	id, err := users.Create(ctx, &User{Email: " Ana@Example.com ", PasswordHash: "h"})
	if err != nil || id == "" {
		t.Fatalf("create: %q %v", id, err)
	}
	if _, err := users.Create(ctx, &User{Email: "ana@example.com", PasswordHash: "h"}); err != ErrConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	u, err := users.FindByEmail(ctx, "ANA@example.com")
	if err != nil || u == nil || u.ID != id {
		t.Fatalf("find: %+v %v", u, err)
	}
	if err := users.SetDisabled(ctx, id, true); err != nil {
		t.Fatalf("disable: %v", err)
	}
	u, _ = users.FindByEmail(ctx, "ana@example.com")
	if !u.Disabled {
		t.Fatalf("expected disabled user")
	}
	if missing, _ := users.FindByEmail(ctx, "nobody@example.com"); missing != nil {
		t.Fatalf("expected nil for unknown email")
	}
}

func TestSQLSourceReadsOnlyCollection(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	insert := `INSERT INTO incidents(collection, id, created_at, nombre_agente, punto, estado, prioridad) VALUES(?,?,?,?,?,?,?)`
	if _, err := db.ExecContext(ctx, insert, "IncidenciasEU", "a", created, "Luis", "Puerta Norte", "ABIERTO", "CRITICA"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "IncidenciasEU", "b", nil, nil, nil, "RESUELTO", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "Otra", "c", created, "X", "Y", "ABIERTO", "BAJA"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	recs, err := NewSQLSource(db).FetchAll(ctx, "IncidenciasEU")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	byID := map[string]map[string]any{}
	for _, r := range recs {
		byID[r.ID] = r.Data
	}
	if ts, ok := byID["a"]["createdAt"].(time.Time); !ok || !ts.Equal(created) {
		t.Fatalf("unexpected createdAt %v", byID["a"]["createdAt"])
	}
	if _, ok := byID["b"]["createdAt"]; ok {
		t.Fatalf("null createdAt must be absent")
	}
	if _, ok := byID["b"]["nombreAgente"]; ok {
		t.Fatalf("null agent must be absent")
	}
}
