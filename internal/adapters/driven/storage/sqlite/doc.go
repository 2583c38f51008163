// Package sqlite provides the SQLite-backed thread log store. The
// schema is managed through embedded migrations applied at open time.
package sqlite
