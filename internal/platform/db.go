// Package platform opens the agency database and manages its schema.
package platform

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/agencypulse/agencypulse/internal/scorecache"
)

// Open connects to a postgres:// or mysql:// (mariadb://) URL and verifies
// the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, scorecache.Dialect, error) {
	dialect, dsn, err := DriverDSN(databaseURL)
	if err != nil {
		return nil, "", err
	}

	driver := "postgres"
	if dialect == scorecache.MySQL {
		driver = "mysql"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}
	return db, dialect, nil
}

// DriverDSN maps a database URL to a dialect and a driver-specific DSN.
// MySQL URLs are rewritten into go-sql-driver form with UTC time parsing.
func DriverDSN(databaseURL string) (scorecache.Dialect, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return scorecache.Postgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "mysql://"), strings.HasPrefix(databaseURL, "mariadb://"):
		dsn, err := toMySQLDSN(databaseURL)
		if err != nil {
			return "", "", err
		}
		return scorecache.MySQL, dsn, nil
	case databaseURL == "":
		return "", "", fmt.Errorf("database URL is empty")
	default:
		return "", "", fmt.Errorf("unsupported database URL scheme (want postgres:// or mysql://)")
	}
}

func toMySQLDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}

	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if cfg.User == "" || cfg.Addr == "" || cfg.DBName == "" {
		return "", fmt.Errorf("incomplete mysql dsn (need user, host and database)")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}
