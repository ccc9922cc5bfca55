package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const maxRetries = 5

// Dialect selects the placeholder style of the queries sent to the db.
type Dialect string

const (
	Sqlite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// rebind turns the ? placeholders of query into $n ones for postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// OpenSqliteDb opens the sqlite db file, creating it if it does not exist.
func OpenSqliteDb(dbFile string) (*sql.DB, error) {
	db, err := sql.Open(string(Sqlite), dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %v", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to establish connection with db: %v", err)
	}
	return db, nil
}

// OpenPostgresDb opens a connection with the DB.
// If the operation fails when trying to establish a connection and the `autoCreate` flag is set to
// true, OpenPostgresDb will try to create the database set in the DSN.
func OpenPostgresDb(dsn string, autoCreate bool) (*sql.DB, error) {
	db, err := sql.Open(string(Postgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := connectDB(ctx, db, dsn, autoCreate); err != nil {
		return nil, fmt.Errorf("unable to establish connection with db: %v", err)
	}

	return db, nil
}

// connectDB pings the db since sql.Open only validates its arguments.
// A missing database is created if autoCreate is set, any other error is
// forwarded as-is.
func connectDB(ctx context.Context, db *sql.DB, dsn string, autoCreate bool) error {
	if err := db.PingContext(ctx); err != nil {
		var dbErr *pq.Error
		// 3D000: invalid_catalog_name.
		if errors.As(err, &dbErr) && dbErr.Code == "3D000" && autoCreate {
			log.Info("Postgres database does not exist, creating it...")

			if err = createPostgresDb(ctx, dsn); err != nil {
				return err
			}
			return connectDB(ctx, db, dsn, false)
		}

		return err
	}

	return nil
}

func createPostgresDb(ctx context.Context, dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("cannot auto-create database unless the DSN uses URL format")
	}

	parsedURL, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsedURL.Path, "/")
	if dbName == "" {
		return fmt.Errorf("cannot auto-create when database name is empty")
	}
	parsedURL.Path = ""

	rootDB, err := sql.Open(string(Postgres), parsedURL.String())
	if err != nil {
		return err
	}
	defer rootDB.Close()

	query := "CREATE DATABASE " + pq.QuoteIdentifier(dbName)
	log.Infof("Executing query '%s'", query)
	if _, err := rootDB.ExecContext(ctx, query); err != nil {
		return err
	}

	return nil
}

type querier struct {
	db      *sql.DB
	dialect Dialect
}

// newQuerier parses the (*sql.DB, Dialect) config shared by every repository.
// The dialect defaults to sqlite.
func newQuerier(name string, config ...interface{}) (*querier, error) {
	if len(config) < 1 || len(config) > 2 {
		return nil, fmt.Errorf("invalid config: expected 1 or 2 arguments, got %d", len(config))
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open %s repository: expected *sql.DB but got %T", name, config[0],
		)
	}
	dialect := Sqlite
	if len(config) == 2 {
		dialect, ok = config[1].(Dialect)
		if !ok {
			return nil, fmt.Errorf(
				"cannot open %s repository: expected Dialect but got %T", name, config[1],
			)
		}
	}
	return &querier{db, dialect}, nil
}

func (q *querier) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res sql.Result
		err error
	)
	for range maxRetries {
		res, err = q.db.ExecContext(ctx, q.dialect.rebind(query), args...)
		if !isConflictError(err) {
			return res, err
		}
		time.Sleep(100 * time.Millisecond)
	}
	return res, err
}

func (q *querier) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

func (q *querier) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.rebind(query), args...)
}

func isConflictError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "database is locked") ||
		strings.Contains(errMsg, "database table is locked") ||
		strings.Contains(errMsg, "busy")
}
