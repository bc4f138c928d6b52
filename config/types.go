package config

import (
	"time"
)

type AppConfig struct {
	ListenAddr    string              `yaml:"listen_addr" env:"INCIDENTS_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	AppEnv        string              `yaml:"app_env" env:"INCIDENTS_APP_ENV"`
	LogLevel      string              `yaml:"log_level" env:"INCIDENTS_LOG_LEVEL" env-default:"info"`
	SessionTTL    time.Duration       `yaml:"session_ttl" env:"INCIDENTS_SESSION_TTL" env-default:"3h"`
	TLSEnabled    bool                `yaml:"tls_enabled" env:"INCIDENTS_TLS_ENABLED" env-default:"false"`
	TLSCert       string              `yaml:"tls_cert" env:"INCIDENTS_TLS_CERT"`
	TLSKey        string              `yaml:"tls_key" env:"INCIDENTS_TLS_KEY"`
	DB            DBConfig            `yaml:"db"`
	Identity      IdentityConfig      `yaml:"identity"`
	Incidents     IncidentsConfig     `yaml:"incidents"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Security      SecurityConfig      `yaml:"security"`
	Janitor       JanitorConfig       `yaml:"janitor"`
	UI            UIConfig            `yaml:"ui"`
}

type DBConfig struct {
	Driver string `yaml:"driver" env:"INCIDENTS_DB_DRIVER" env-default:"sqlite"`
	URL    string `yaml:"url" env:"INCIDENTS_DB_URL" env-default:"data/incidents.db"`
}

type IdentityConfig struct {
	Provider string         `yaml:"provider" env:"INCIDENTS_IDENTITY_PROVIDER" env-default:"firebase"`
	Firebase FirebaseConfig `yaml:"firebase"`
}

type FirebaseConfig struct {
	APIKey          string `yaml:"api_key" env:"INCIDENTS_FIREBASE_API_KEY"`
	ProjectID       string `yaml:"project_id" env:"INCIDENTS_FIREBASE_PROJECT_ID" env-default:"lidermaneu"`
	CredentialsFile string `yaml:"credentials_file" env:"INCIDENTS_FIREBASE_CREDENTIALS_FILE"`
	AuthEndpoint    string `yaml:"auth_endpoint" env:"INCIDENTS_FIREBASE_AUTH_ENDPOINT" env-default:"https://www.googleapis.com/identitytoolkit/v3/relyingparty/"`
	RequestTimeout  int    `yaml:"request_timeout_sec" env:"INCIDENTS_FIREBASE_REQUEST_TIMEOUT" env-default:"15"`
}

type IncidentsConfig struct {
	Source          string `yaml:"source" env:"INCIDENTS_SOURCE" env-default:"firestore"`
	Collection      string `yaml:"collection" env:"INCIDENTS_COLLECTION" env-default:"IncidenciasEU"`
	FetchTimeoutSec int    `yaml:"fetch_timeout_sec" env:"INCIDENTS_FETCH_TIMEOUT" env-default:"30"`
}

type NotificationsConfig struct {
	TTL time.Duration `yaml:"ttl" env:"INCIDENTS_NOTIFICATIONS_TTL" env-default:"3s"`
}

type SecurityConfig struct {
	TrustedProxies    []string      `yaml:"trusted_proxies" env:"INCIDENTS_SECURITY_TRUSTED_PROXIES" env-separator:","`
	LoginRateCapacity int           `yaml:"login_rate_capacity" env:"INCIDENTS_SECURITY_LOGIN_RATE_CAPACITY" env-default:"5"`
	LoginRateWindow   time.Duration `yaml:"login_rate_window" env:"INCIDENTS_SECURITY_LOGIN_RATE_WINDOW" env-default:"1m"`
	ShellIdleTTL      time.Duration `yaml:"shell_idle_ttl" env:"INCIDENTS_SECURITY_SHELL_IDLE_TTL" env-default:"30m"`
}

type JanitorConfig struct {
	Enabled bool   `yaml:"enabled" env:"INCIDENTS_JANITOR_ENABLED" env-default:"true"`
	Spec    string `yaml:"spec" env:"INCIDENTS_JANITOR_SPEC" env-default:"@every 30s"`
}

type UIConfig struct {
	Lang     string `yaml:"lang" env:"INCIDENTS_UI_LANG" env-default:"es"`
	TimeZone string `yaml:"time_zone" env:"INCIDENTS_UI_TIME_ZONE" env-default:"Europe/Madrid"`
}

func (c *AppConfig) IsProduction() bool {
	if c == nil {
		return false
	}
	return c.AppEnv == "production"
}

const maxUserSessionTTL = 12 * time.Hour

func (c *AppConfig) EffectiveSessionTTL() time.Duration {
	ttl := 3 * time.Hour
	if c != nil && c.SessionTTL > 0 {
		ttl = c.SessionTTL
	}
	if ttl > maxUserSessionTTL {
		return maxUserSessionTTL
	}
	return ttl
}

func (c *AppConfig) FetchTimeout() time.Duration {
	if c == nil || c.Incidents.FetchTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Incidents.FetchTimeoutSec) * time.Second
}

func (c *AppConfig) NotificationTTL() time.Duration {
	if c == nil || c.Notifications.TTL <= 0 {
		return 3 * time.Second
	}
	return c.Notifications.TTL
}

// Location falls back to UTC when the zone database lacks the configured zone.
func (c *AppConfig) Location() *time.Location {
	if c == nil || c.UI.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.UI.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
