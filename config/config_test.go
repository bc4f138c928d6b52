package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("identity:\n  provider: local\nincidents:\n  source: sql\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Incidents.Collection != "IncidenciasEU" {
		t.Fatalf("unexpected collection %q", cfg.Incidents.Collection)
	}
	if cfg.NotificationTTL() != 3*time.Second {
		t.Fatalf("unexpected notification ttl %s", cfg.NotificationTTL())
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("unexpected driver %q", cfg.DB.Driver)
	}
}

func TestValidateRejectsFirebaseWithoutKey(t *testing.T) {
	cfg := &AppConfig{
		DB:        DBConfig{Driver: "sqlite"},
		Identity:  IdentityConfig{Provider: "firebase"},
		Incidents: IncidentsConfig{Source: "firestore", Collection: "IncidenciasEU"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestEffectiveSessionTTLCapped(t *testing.T) {
	cfg := &AppConfig{SessionTTL: 48 * time.Hour}
	if got := cfg.EffectiveSessionTTL(); got != maxUserSessionTTL {
		t.Fatalf("expected cap, got %s", got)
	}
	var nilCfg *AppConfig
	if got := nilCfg.EffectiveSessionTTL(); got != 3*time.Hour {
		t.Fatalf("expected default, got %s", got)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &AppConfig{UI: UIConfig{TimeZone: "Nowhere/Invalid"}}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected utc fallback")
	}
}
