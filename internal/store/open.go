package store

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
)

// Options configures the MySQL connection pool.
type Options struct {
	DSN          string
	TiDBCA       string
	MaxOpenConns int
}

// Open connects to MySQL, registering the "tidb" TLS profile when the DSN asks for it.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	if strings.Contains(opts.DSN, "tls=tidb") {
		registerTiDBTLS(opts.TiDBCA)
	}

	cfg, err := mysql.ParseDSN(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	// clicked_at is scanned into time.Time.
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func registerTiDBTLS(caPath string) {
	// Default path used by TiDB Cloud docs.
	if caPath == "" {
		caPath = "/etc/ssl/certs/ca-certificates.crt"
	}
	pool := x509.NewCertPool()
	b, err := os.ReadFile(caPath)
	if err != nil {
		log.Printf("warning: could not read CA file %s: %v, falling back to InsecureSkipVerify", caPath, err)
		_ = mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
		return
	}
	if !pool.AppendCertsFromPEM(b) {
		log.Printf("warning: could not parse CA file %s, falling back to InsecureSkipVerify", caPath)
		_ = mysql.RegisterTLSConfig("tidb", &tls.Config{InsecureSkipVerify: true})
		return
	}
	_ = mysql.RegisterTLSConfig("tidb", &tls.Config{RootCAs: pool})
}
