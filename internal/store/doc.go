// Package store provides a SQLite-backed string-to-string key-value store.
//
// All records live in one table:
//
//	CREATE TABLE IF NOT EXISTS "KVStore" (
//	    "Key"   TEXT PRIMARY KEY NOT NULL,
//	    "Value" TEXT NOT NULL
//	)
//
// A Manager owns one connection, creates the table on construction if
// sqlite_master does not list it, and exposes exact lookups, prefix and
// substring searches, and three write modes:
//
//   - Insert: applied only when the key is absent, otherwise Rejected
//   - Update: applied only when the key is present, otherwise Rejected
//   - InsertOrUpdate: always applied
//
// Rejected is an Outcome on WriteResult, not an error. Errors are either
// validation sentinels (ErrKeyRequired, ErrValueRequired), lifecycle
// sentinels (ErrClosed, ErrAlreadyInitialized) or a *StorageError wrapping
// the driver error.
//
// # Statements
//
// Every statement is a querysql.Template bound with driver-native
// parameters. Keys and values are never spliced into SQL text, and LIKE
// wildcards in search arguments are escaped.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Two drivers are registered: "sqlite3" (github.com/mattn/go-sqlite3) and
// "sqlite" (modernc.org/sqlite).
package store
