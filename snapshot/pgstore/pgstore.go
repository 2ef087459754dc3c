package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/snapshot-testing-go/snapshot"
	"github.com/AntonStoeckl/snapshot-testing-go/snapshot/pgstore/internal/adapters"
)

const (
	defaultTableName          = "snapshot_references"
	dialectPostgres           = "postgres"
	colLocation               = "location"
	colKind                   = "kind"
	colPayload                = "payload"
	colFileExtension          = "file_extension"
	colUpdatedAt              = "updated_at"
	likeEscape                = `\`
	logMsgSQLExecuted         = "executed sql for: "
	logMsgDBOperationFailed   = "database operation failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrLocation           = "location"
	logAttrOperation          = "operation"
	logAttrDurationMS         = "duration_ms"
	operationExists           = "exists"
	operationRead             = "read"
	operationWrite            = "write"
	operationList             = "list"
	operationRemove           = "remove"
	operationCreateTable      = "create_table"
	metricOperationDuration   = "snapshot_store_operation_duration_seconds"
	metricOperationErrorTotal = "snapshot_store_operation_errors_total"
	labelOperation            = "operation"
)

var (
	// ErrNilDatabaseConnection is returned when a store is created without a database handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrInvalidTableName is returned for table names that are not plain lower-case SQL identifiers.
	ErrInvalidTableName = errors.New("table name must match [a-z_][a-z0-9_]*")

	// ErrBuildingQueryFailed is returned when a statement cannot be rendered.
	ErrBuildingQueryFailed = errors.New("building the query failed")

	tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// Store is a snapshot.Store backed by a PostgreSQL table.
type Store struct {
	db               adapters.DBAdapter
	tableName        string
	logger           snapshot.Logger
	contextualLogger snapshot.ContextualLogger
	metricsCollector snapshot.MetricsCollector
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithTableName sets the table holding the artifacts.
func WithTableName(tableName string) Option {
	return func(s *Store) error {
		if !tableNamePattern.MatchString(tableName) {
			return fmt.Errorf("%w: %q", ErrInvalidTableName, tableName)
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
//
// Debug level: SQL statements with execution timing
// Error level: failed statements.
func WithLogger(logger snapshot.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger for the Store; it takes precedence over WithLogger.
func WithContextualLogger(logger snapshot.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for statement durations and errors.
func WithMetrics(collector snapshot.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// NewStoreFromPGXPool creates a Store using a pgx Pool.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a Store using a sql.DB, e.g. opened with the lib/pq driver.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a Store using a sqlx.DB.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// TableName returns the table holding the artifacts.
func (s Store) TableName() string {
	return s.tableName
}

// CreateTable creates the artifact table if it does not exist yet.
func (s Store) CreateTable(ctx context.Context) error {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s TEXT NOT NULL, %s BYTEA NOT NULL, "+
			"%s TEXT NOT NULL, %s TIMESTAMPTZ NOT NULL DEFAULT now())",
		s.tableName, colLocation, colKind, colPayload, colFileExtension, colUpdatedAt,
	)

	_, err := s.exec(ctx, operationCreateTable, ddl)

	return err
}

// Exists reports whether an artifact is stored at location.
func (s Store) Exists(ctx context.Context, location string) (bool, error) {
	if err := validateLocation(location); err != nil {
		return false, err
	}

	query, args, err := s.buildExistsQuery(location)
	if err != nil {
		return false, s.fail(ctx, operationExists, location, err)
	}

	found := false
	queryErr := s.query(ctx, operationExists, location, query, args, func(rows adapters.DBRows) error {
		found = true
		return nil
	})

	return found, queryErr
}

// Read loads the artifact at location. A missing row is reported as found == false, not as an error.
// The kind and extension stored with the artifact are returned, so a changed strategy kind
// surfaces as a mismatch instead of a misread payload.
func (s Store) Read(
	ctx context.Context,
	location string,
	_ snapshot.Kind,
	_ string,
) (snapshot.Format, bool, error) {

	if err := validateLocation(location); err != nil {
		return snapshot.Format{}, false, err
	}

	query, args, err := s.buildReadQuery(location)
	if err != nil {
		return snapshot.Format{}, false, s.fail(ctx, operationRead, location, err)
	}

	var (
		format snapshot.Format
		found  bool
	)

	queryErr := s.query(ctx, operationRead, location, query, args, func(rows adapters.DBRows) error {
		var (
			storedKind string
			payload    []byte
			extension  string
		)

		if scanErr := rows.Scan(&storedKind, &payload, &extension); scanErr != nil {
			return scanErr
		}

		parsedKind, parseErr := snapshot.ParseKind(storedKind)
		if parseErr != nil {
			return parseErr
		}

		built, buildErr := snapshot.NewFormat(parsedKind, payload, extension)
		if buildErr != nil {
			return buildErr
		}

		format, found = built, true

		return nil
	})
	if queryErr != nil {
		return snapshot.Format{}, false, queryErr
	}

	return format, found, nil
}

// Write stores format at location, replacing any previous artifact.
func (s Store) Write(ctx context.Context, location string, format snapshot.Format) error {
	if err := validateLocation(location); err != nil {
		return err
	}

	query, args, err := s.buildUpsertQuery(location, format)
	if err != nil {
		return s.fail(ctx, operationWrite, location, err)
	}

	_, err = s.exec(ctx, operationWrite, query, args...)

	return err
}

// List returns the locations under dir in lexical order. An empty dir lists everything.
func (s Store) List(ctx context.Context, dir string) ([]string, error) {
	query, args, err := s.buildListQuery(dir)
	if err != nil {
		return nil, s.fail(ctx, operationList, dir, err)
	}

	locations := make([]string, 0)
	queryErr := s.query(ctx, operationList, dir, query, args, func(rows adapters.DBRows) error {
		var location string
		if scanErr := rows.Scan(&location); scanErr != nil {
			return scanErr
		}

		locations = append(locations, location)

		return nil
	})
	if queryErr != nil {
		return nil, queryErr
	}

	return locations, nil
}

// Remove deletes the artifact at location. Removing a missing artifact is not an error.
func (s Store) Remove(ctx context.Context, location string) error {
	if err := validateLocation(location); err != nil {
		return err
	}

	query, args, err := s.buildDeleteQuery(location)
	if err != nil {
		return s.fail(ctx, operationRemove, location, err)
	}

	_, err = s.exec(ctx, operationRemove, query, args...)

	return err
}

func (s Store) buildExistsQuery(location string) (string, []any, error) {
	return goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.L("1")).
		Where(goqu.C(colLocation).Eq(location)).
		Limit(1).
		Prepared(true).
		ToSQL()
}

func (s Store) buildReadQuery(location string) (string, []any, error) {
	return goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(colKind, colPayload, colFileExtension).
		Where(goqu.C(colLocation).Eq(location)).
		Prepared(true).
		ToSQL()
}

func (s Store) buildUpsertQuery(location string, format snapshot.Format) (string, []any, error) {
	return goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			colLocation:      location,
			colKind:          format.Kind().String(),
			colPayload:       format.Bytes(),
			colFileExtension: format.FileExtension(),
			colUpdatedAt:     goqu.L("now()"),
		}).
		OnConflict(goqu.DoUpdate(colLocation, goqu.Record{
			colKind:          goqu.L("EXCLUDED." + colKind),
			colPayload:       goqu.L("EXCLUDED." + colPayload),
			colFileExtension: goqu.L("EXCLUDED." + colFileExtension),
			colUpdatedAt:     goqu.L("EXCLUDED." + colUpdatedAt),
		})).
		Prepared(true).
		ToSQL()
}

func (s Store) buildListQuery(dir string) (string, []any, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(colLocation).
		Order(goqu.C(colLocation).Asc())

	if prefix := strings.Trim(dir, "/"); prefix != "" {
		selectStmt = selectStmt.Where(goqu.C(colLocation).Like(escapeLike(prefix) + "/%"))
	}

	return selectStmt.Prepared(true).ToSQL()
}

func (s Store) buildDeleteQuery(location string) (string, []any, error) {
	return goqu.Dialect(dialectPostgres).
		Delete(s.tableName).
		Where(goqu.C(colLocation).Eq(location)).
		Prepared(true).
		ToSQL()
}

// query runs a statement and hands every row to scan. Failures wrap snapshot.ErrArtifactIO.
func (s Store) query(
	ctx context.Context,
	operation string,
	location string,
	query string,
	args []any,
	scan func(rows adapters.DBRows) error,
) error {

	start := time.Now()

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return s.fail(ctx, operation, location, err)
	}
	defer s.closeRows(ctx, rows)

	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			return s.fail(ctx, operation, location, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return s.fail(ctx, operation, location, rowsErr)
	}

	s.logQueryWithDuration(ctx, query, operation, time.Since(start))

	return nil
}

func (s Store) exec(ctx context.Context, operation, query string, args ...any) (int64, error) {
	start := time.Now()

	result, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, s.fail(ctx, operation, "", err)
	}

	s.logQueryWithDuration(ctx, query, operation, time.Since(start))

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, s.fail(ctx, operation, "", err)
	}

	return rowsAffected, nil
}

func (s Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logError(ctx, logMsgCloseRowsFailed, err)
	}
}

func (s Store) fail(ctx context.Context, operation, location string, err error) error {
	s.logError(ctx, logMsgDBOperationFailed, err, logAttrOperation, operation, logAttrLocation, location)

	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(metricOperationErrorTotal, map[string]string{labelOperation: operation})
	}

	return errors.Join(snapshot.ErrArtifactIO, err)
}

func (s Store) logQueryWithDuration(ctx context.Context, query, operation string, duration time.Duration) {
	if s.metricsCollector != nil {
		s.metricsCollector.RecordDuration(metricOperationDuration, duration, map[string]string{labelOperation: operation})
	}

	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, query}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+operation, args...)
	} else if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+operation, args...)
	}
}

func (s Store) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	} else if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}
}

func validateLocation(location string) error {
	if !fs.ValidPath(location) || location == "." {
		return fmt.Errorf("%w: %q", snapshot.ErrInvalidLocation, location)
	}

	return nil
}

// escapeLike escapes the LIKE wildcards of a literal prefix.
func escapeLike(prefix string) string {
	replacer := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return replacer.Replace(prefix)
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Round(time.Microsecond)) / float64(time.Millisecond)
}

var (
	_ snapshot.Store   = Store{}
	_ snapshot.Remover = Store{}
)
