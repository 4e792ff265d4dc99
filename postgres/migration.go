// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	migrate "github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal mapper flow, either at
// initial startup or from an external tool.

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-resources",
			Up: []string{
				`CREATE TABLE resource(
				    name TEXT PRIMARY KEY,
				    data BYTEA NOT NULL
				)`,
				`CREATE TABLE record(
				    resource TEXT NOT NULL
				        REFERENCES resource(name) ON DELETE CASCADE,
				    id TEXT NOT NULL,
				    seq BIGSERIAL NOT NULL,
				    data BYTEA NOT NULL,
				    PRIMARY KEY(resource, id)
				)`,
				`CREATE INDEX record_seq ON record(resource, seq)`,
			},
			Down: []string{
				`DROP TABLE record`,
				`DROP TABLE resource`,
			},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}
