// Package testutil holds the gallery's integration-test plumbing: a migrated
// Postgres schema, per-test rolled-back transactions and a table reset.
// Everything keys off TEST_DATABASE_URL and skips when it is unset.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/case-gallery/migrations"
)

// EnvDSN names the variable holding the integration database URL.
const EnvDSN = "TEST_DATABASE_URL"

// GalleryTables lists every table created by the gallery schema, children
// before parents.
var GalleryTables = []string{"case_meta", "case_images", "case_terms", "cases", "attachments", "terms"}

// execer is satisfied by *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunMigrated brings the gallery schema up to date and then runs the
// package's tests. It is meant to be the whole body of a TestMain:
//
//	func TestMain(m *testing.M) { os.Exit(testutil.RunMigrated(m)) }
//
// Without TEST_DATABASE_URL the tests run as-is and the integration ones
// skip themselves.
func RunMigrated(m *testing.M) int {
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		return m.Run()
	}

	db := MustOpenSQLDB(dsn)
	if err := MigrateUp(context.Background(), db); err != nil {
		db.Close()
		log.Fatalf("testutil.RunMigrated: %v", err)
	}
	db.Close()

	return m.Run()
}

// MigrateUp applies every pending gallery migration.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("testutil.MigrateUp: %w", err)
	}
	return nil
}

// NewPool opens a pool on the gallery test database, closed on cleanup.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// GalleryTx begins a transaction that is rolled back when the test ends.
// Repositories and the importer built on it never leave rows behind.
func GalleryTx(t *testing.T) pgx.Tx {
	t.Helper()

	pool := NewPool(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.GalleryTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return tx
}

// TruncateGallery empties every gallery table and resets identities.
// Called on a GalleryTx it only affects that transaction.
func TruncateGallery(t *testing.T, db execer) {
	t.Helper()

	stmt := "TRUNCATE " + strings.Join(GalleryTables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := db.Exec(context.Background(), stmt); err != nil {
		t.Fatalf("testutil.TruncateGallery: %v", err)
	}
}

// NewSQLDB opens a database/sql handle for driving goose against the test
// database, closed on cleanup.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB opens a database/sql handle outside a test, panicking on
// failure. The caller closes it.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skip(EnvDSN + " not set; skipping integration test")
	}
	return dsn
}
