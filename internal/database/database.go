package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema. The
// unique indexes on users.email and bookings(listing_id, tenant_id) are
// the authoritative enforcement of those constraints; application-level
// existence checks are advisory only.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'tenant',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS listings (
		id TEXT NOT NULL PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		price REAL NOT NULL,
		location TEXT NOT NULL,
		latitude REAL,
		longitude REAL,
		type TEXT NOT NULL,
		-- Store the ordered image URL list as JSON text
		images_json TEXT NOT NULL DEFAULT '[]',
		is_approved INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT NOT NULL PRIMARY KEY,
		listing_id TEXT NOT NULL REFERENCES listings(id),
		tenant_id TEXT NOT NULL REFERENCES users(id),
		owner_id TEXT NOT NULL REFERENCES users(id),
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_listings_owner ON listings(owner_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_owner ON bookings(owner_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_listing_tenant ON bookings(listing_id, tenant_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
