// Package postgreswrapper creates PostgreSQL ledger stores for integration tests, over the driver named by ADAPTER_TYPE.
// Tests are skipped when LEDGER_TEST_POSTGRES_DSN is not set.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/config"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/migrations"
)

const truncateAll = `TRUNCATE TABLE fines, borrowing_records, book_authors, books, authors, members RESTART IDENTITY CASCADE`

// Wrapper abstracts over the different drivers.
type Wrapper interface {
	Store() *postgresengine.Store
	Exec(ctx context.Context, query string, args ...any) error
	QueryInt(ctx context.Context, query string, args ...any) (int, error)
	Close()
}

// PGXPoolWrapper wraps a pgxpool based Store.
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store *postgresengine.Store
}

func (w *PGXPoolWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, query string, args ...any) error {
	_, err := w.pool.Exec(ctx, query, args...)
	return err
}

func (w *PGXPoolWrapper) QueryInt(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := w.pool.QueryRow(ctx, query, args...).Scan(&n)

	return n, err
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps a sql.DB based Store.
type SQLDBWrapper struct {
	db    *sql.DB
	store *postgresengine.Store
}

func (w *SQLDBWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLDBWrapper) Exec(ctx context.Context, query string, args ...any) error {
	_, err := w.db.ExecContext(ctx, query, args...)
	return err
}

func (w *SQLDBWrapper) QueryInt(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := w.db.QueryRowContext(ctx, query, args...).Scan(&n)

	return n, err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps a sqlx.DB based Store.
type SQLXWrapper struct {
	db    *sqlx.DB
	store *postgresengine.Store
}

func (w *SQLXWrapper) Store() *postgresengine.Store {
	return w.store
}

func (w *SQLXWrapper) Exec(ctx context.Context, query string, args ...any) error {
	_, err := w.db.ExecContext(ctx, query, args...)
	return err
}

func (w *SQLXWrapper) QueryInt(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := w.db.GetContext(ctx, &n, query, args...)

	return n, err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig migrates the test database, empties it and returns a wrapper for the driver
// named by ADAPTER_TYPE (pgx.pool when unset). It skips the test when no test database is configured.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := config.PostgresTestDSN()
	if dsn == "" {
		t.Skipf("%s is not set", config.TestPostgresDSNEnv)
	}

	require.NoError(t, migrations.Up(dsn), "error migrating the test database")

	ctx := context.Background()
	adapterType := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	var wrapper Wrapper

	switch adapterType {
	case config.AdapterPGXPool, "":
		pool, err := config.PostgresPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		store, err := postgresengine.NewStoreFromPGXPool(pool, options...)
		require.NoError(t, err)
		wrapper = &PGXPoolWrapper{pool: pool, store: store}

	case config.AdapterSQLDB:
		db, err := config.PostgresSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		store, err := postgresengine.NewStoreFromSQLDB(db, options...)
		require.NoError(t, err)
		wrapper = &SQLDBWrapper{db: db, store: store}

	case config.AdapterSQLX:
		db, err := config.PostgresSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")
		store, err := postgresengine.NewStoreFromSQLX(db, options...)
		require.NoError(t, err)
		wrapper = &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	CleanUp(t, wrapper)
	t.Cleanup(wrapper.Close)

	return wrapper
}

// CleanUp empties all lending tables and restarts their identities.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	require.NoError(t, wrapper.Exec(context.Background(), truncateAll), "error cleaning up the lending tables")
}
