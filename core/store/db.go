package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"incidents-dashboard/config"
	"incidents-dashboard/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DB carries the dialect next to the pool so stores can rebind placeholders.
type DB struct {
	*sql.DB
	Dialect string
}

func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*DB, error) {
	switch cfg.DB.Driver {
	case DialectPostgres:
		return openPostgres(cfg.DB.URL, logger)
	case DialectSQLite, "":
		return openSQLite(cfg.DB.URL, logger)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
}

func openSQLite(path string, logger *utils.Logger) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_time_format=sqlite"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Printf("db opened driver=sqlite path=%s", path)
	return &DB{DB: db, Dialect: DialectSQLite}, nil
}

func openPostgres(url string, logger *utils.Logger) (*DB, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("postgres url required")
	}
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Printf("db opened driver=postgres")
	return &DB{DB: db, Dialect: DialectPostgres}, nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// Rebind rewrites '?' placeholders to '$n' for postgres.
func (d *DB) Rebind(query string) string {
	if d.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
