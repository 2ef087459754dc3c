// Package pgconfig opens PostgreSQL connections for the integration tests of the artifact store.
//
// The DSN is read from SNAPSHOT_PG_DSN; without it, integration tests skip. Connections are
// available for all supported handles: pgx.Pool, sql.DB (lib/pq) and sqlx.DB.
package pgconfig
