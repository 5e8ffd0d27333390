// Package store implements the repository interfaces on database/sql.
//
// The same repository code serves two drivers: pgx (Postgres) in production
// and modernc.org/sqlite for tests and the embedded deployment mode. That
// works because every query sticks to the dialect intersection — ascending
// $1..$n placeholders (SQLite treats $n as a named parameter and assigns
// ordinals in order of appearance), INSERT ... RETURNING for generated
// keys, and timestamps set in Go rather than by the database. Only the DDL
// differs per driver.
package store

import (
	"database/sql"
	"fmt"

	// Driver registrations. Each blank import's init() registers a driver
	// name with database/sql: "pgx" for Postgres and "sqlite" for the
	// pure-Go embedded engine.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB connection pool and implements every repository
// interface. The pool is safe for concurrent use; handlers share one Store
// for the life of the process, which replaces the original per-request
// open/close pattern.
type Store struct {
	conn   *sql.DB
	driver string
}

// New opens the database for the given driver ("postgres" or "sqlite"),
// verifies connectivity, and runs migrations.
func New(driver, dsn string) (*Store, error) {
	driverName, err := sqlDriverName(driver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}

	// sql.Open only prepares the pool; force a real connection now so a bad
	// DSN surfaces at startup rather than on the first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: pinging database: %w", err)
	}

	if driver == "sqlite" {
		// A single pooled connection keeps :memory: databases coherent —
		// every new pool connection would otherwise see a fresh empty DB —
		// and sidesteps SQLite's single-writer lock contention.
		conn.SetMaxOpenConns(1)

		// WAL lets readers run while a write is in flight; foreign keys are
		// off by default in SQLite and the schema relies on them.
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys=ON",
			"PRAGMA busy_timeout=3000",
		} {
			if _, err := conn.Exec(pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("store: %s: %w", pragma, err)
			}
		}
	}

	s := &Store{conn: conn, driver: driver}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: running migrations: %w", err)
	}

	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Per-resource accessors. Each returns a thin view over the shared pool
// implementing one repository interface, so the service layer never sees
// methods for resources it does not own.

func (s *Store) Users() *UserStore {
	return &UserStore{conn: s.conn}
}

func (s *Store) LostPets() *LostPetStore {
	return &LostPetStore{conn: s.conn}
}

func (s *Store) Sightings() *SightingStore {
	return &SightingStore{conn: s.conn}
}

func (s *Store) Community() *CommunityStore {
	return &CommunityStore{conn: s.conn}
}

func (s *Store) Animals() *AnimalStore {
	return &AnimalStore{conn: s.conn}
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("store: unknown driver %q (want postgres or sqlite)", driver)
	}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
func (s *Store) migrate() error {
	ddl := postgresDDL
	if s.driver == "sqlite" {
		ddl = sqliteDDL
	}
	for i, stmt := range ddl {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var postgresDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_num          BIGSERIAL PRIMARY KEY,
		id                TEXT NOT NULL UNIQUE,
		password_hash     TEXT NOT NULL DEFAULT '',
		nickname          TEXT NOT NULL DEFAULT '',
		name              TEXT NOT NULL DEFAULT '',
		phone             TEXT NOT NULL DEFAULT '',
		role              TEXT NOT NULL DEFAULT 'GENERAL',
		social_login_type TEXT NOT NULL DEFAULT 'GENERAL',
		created_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lost_pets (
		id             BIGSERIAL PRIMARY KEY,
		user_num       BIGINT NOT NULL REFERENCES users(user_num),
		pet_name       TEXT NOT NULL,
		species        TEXT NOT NULL DEFAULT '',
		gender         TEXT NOT NULL DEFAULT '',
		age            TEXT NOT NULL DEFAULT '',
		features       TEXT NOT NULL DEFAULT '',
		lost_date      TEXT NOT NULL,
		lost_location  TEXT NOT NULL,
		lat            DOUBLE PRECISION NOT NULL DEFAULT 0,
		lon            DOUBLE PRECISION NOT NULL DEFAULT 0,
		contact        TEXT NOT NULL DEFAULT '',
		photo_url      TEXT NOT NULL DEFAULT '',
		status         INTEGER NOT NULL DEFAULT 0,
		notify_on_seen BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lost_pets_user_num ON lost_pets(user_num)`,
	`CREATE TABLE IF NOT EXISTS sighting_reports (
		id              BIGSERIAL PRIMARY KEY,
		user_num        BIGINT NOT NULL REFERENCES users(user_num),
		title           TEXT NOT NULL,
		species         TEXT NOT NULL DEFAULT '',
		report_date     TEXT NOT NULL,
		report_location TEXT NOT NULL,
		lat             DOUBLE PRECISION NOT NULL DEFAULT 0,
		lon             DOUBLE PRECISION NOT NULL DEFAULT 0,
		content         TEXT NOT NULL DEFAULT '',
		contact         TEXT NOT NULL DEFAULT '',
		photo_url       TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS community_posts (
		id         BIGSERIAL PRIMARY KEY,
		user_num   BIGINT NOT NULL REFERENCES users(user_num),
		title      TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS community_comments (
		id         BIGSERIAL PRIMARY KEY,
		post_id    BIGINT NOT NULL REFERENCES community_posts(id) ON DELETE CASCADE,
		user_num   BIGINT NOT NULL REFERENCES users(user_num),
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON community_comments(post_id)`,
	`CREATE TABLE IF NOT EXISTS shelter_animals (
		id              BIGSERIAL PRIMARY KEY,
		desertion_no    TEXT NOT NULL UNIQUE,
		species         TEXT NOT NULL DEFAULT '',
		breed           TEXT NOT NULL DEFAULT '',
		sex             TEXT NOT NULL DEFAULT '',
		rescue_date     TEXT NOT NULL DEFAULT '',
		rescue_location TEXT NOT NULL DEFAULT '',
		shelter_name    TEXT NOT NULL DEFAULT '',
		shelter_phone   TEXT NOT NULL DEFAULT '',
		image_url       TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shelter_animals_rescue_date ON shelter_animals(rescue_date)`,
}

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_num          INTEGER PRIMARY KEY AUTOINCREMENT,
		id                TEXT NOT NULL UNIQUE,
		password_hash     TEXT NOT NULL DEFAULT '',
		nickname          TEXT NOT NULL DEFAULT '',
		name              TEXT NOT NULL DEFAULT '',
		phone             TEXT NOT NULL DEFAULT '',
		role              TEXT NOT NULL DEFAULT 'GENERAL',
		social_login_type TEXT NOT NULL DEFAULT 'GENERAL',
		created_at        DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lost_pets (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		user_num       INTEGER NOT NULL REFERENCES users(user_num),
		pet_name       TEXT NOT NULL,
		species        TEXT NOT NULL DEFAULT '',
		gender         TEXT NOT NULL DEFAULT '',
		age            TEXT NOT NULL DEFAULT '',
		features       TEXT NOT NULL DEFAULT '',
		lost_date      TEXT NOT NULL,
		lost_location  TEXT NOT NULL,
		lat            REAL NOT NULL DEFAULT 0,
		lon            REAL NOT NULL DEFAULT 0,
		contact        TEXT NOT NULL DEFAULT '',
		photo_url      TEXT NOT NULL DEFAULT '',
		status         INTEGER NOT NULL DEFAULT 0,
		notify_on_seen BOOLEAN NOT NULL DEFAULT 0,
		created_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lost_pets_user_num ON lost_pets(user_num)`,
	`CREATE TABLE IF NOT EXISTS sighting_reports (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		user_num        INTEGER NOT NULL REFERENCES users(user_num),
		title           TEXT NOT NULL,
		species         TEXT NOT NULL DEFAULT '',
		report_date     TEXT NOT NULL,
		report_location TEXT NOT NULL,
		lat             REAL NOT NULL DEFAULT 0,
		lon             REAL NOT NULL DEFAULT 0,
		content         TEXT NOT NULL DEFAULT '',
		contact         TEXT NOT NULL DEFAULT '',
		photo_url       TEXT NOT NULL DEFAULT '',
		created_at      DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS community_posts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_num   INTEGER NOT NULL REFERENCES users(user_num),
		title      TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT '',
		content    TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS community_comments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id    INTEGER NOT NULL REFERENCES community_posts(id) ON DELETE CASCADE,
		user_num   INTEGER NOT NULL REFERENCES users(user_num),
		content    TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON community_comments(post_id)`,
	`CREATE TABLE IF NOT EXISTS shelter_animals (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		desertion_no    TEXT NOT NULL UNIQUE,
		species         TEXT NOT NULL DEFAULT '',
		breed           TEXT NOT NULL DEFAULT '',
		sex             TEXT NOT NULL DEFAULT '',
		rescue_date     TEXT NOT NULL DEFAULT '',
		rescue_location TEXT NOT NULL DEFAULT '',
		shelter_name    TEXT NOT NULL DEFAULT '',
		shelter_phone   TEXT NOT NULL DEFAULT '',
		image_url       TEXT NOT NULL DEFAULT '',
		created_at      DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shelter_animals_rescue_date ON shelter_animals(rescue_date)`,
}
