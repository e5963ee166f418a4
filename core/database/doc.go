// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to open the experiment database with the
// configured driver. Tversky databases are usually SQLite files, so sqlite is
// the default; MySQL is supported for stores that were moved to a server.
//
// # Connect
//
// Connect opens the database and verifies it with a ping bounded by the configured
// timeout. SQLite handles are limited to one open connection so that a staged
// transaction and every statement of a run share the same connection.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns (PRAGMA table_info on sqlite, SHOW COLUMNS
// on MySQL). The subjects feature uses it to verify that a database carries the
// Subjects and MTurk columns the reconciler reads and writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "MTurk")
package database
