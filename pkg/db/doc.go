// Package db provides database connection utilities for the portfolio backend.
//
// The store is a single SQLite file opened through GORM with the
// go-sqlite3 driver. Every connection enables foreign keys, WAL journaling
// and synchronous=NORMAL.
//
// # Connection
//
//	database, err := db.Connect(db.Config{Path: cfg.DBFile, LogLevel: cfg.LogLevel})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Migrations
//
// Schema migrations are embedded in the binary and applied with
// golang-migrate:
//
//	version, err := db.Migrate(cfg.DBFile)
//
// # Environment Variables
//
//   - DB_FILE: path of the SQLite database (required)
//   - LOG_LEVEL: set to "debug" for SQL query logging
package db
