package pgconfig

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// EnvDSN names the environment variable holding the DSN of the test database.
const EnvDSN = "SNAPSHOT_PG_DSN"

const (
	driverName             = "postgres"
	defaultMaxConnections  = 10
	defaultMinConnections  = 2
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = time.Minute * 5
	defaultConnectTimeout  = time.Second * 5
)

// ErrNoDSN is returned when SNAPSHOT_PG_DSN is not set.
var ErrNoDSN = errors.New(EnvDSN + " is not set")

// DSN returns the DSN of the test database.
func DSN() (string, error) {
	dsn, ok := os.LookupEnv(EnvDSN)
	if !ok || strings.TrimSpace(dsn) == "" {
		return "", ErrNoDSN
	}

	return dsn, nil
}

// RequireDSN returns the DSN or skips the test when none is configured.
func RequireDSN(tb testing.TB) string {
	tb.Helper()

	dsn, err := DSN()
	if err != nil {
		tb.Skipf("skipping PostgreSQL integration test: %v", err)
	}

	return dsn
}

// PGXPool creates a pgxpool.Pool for dsn and checks the connection.
func PGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = defaultMaxConnections
	dbConfig.MinConns = defaultMinConnections
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, pingErr
	}

	return pool, nil
}

// SQLDB creates a sql.DB using the lib/pq driver and checks the connection.
func SQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	configure(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

// SQLX creates a sqlx.DB using the lib/pq driver and checks the connection.
func SQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	configure(db.DB)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

func configure(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxConnections)
	db.SetMaxIdleConns(defaultMinConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
