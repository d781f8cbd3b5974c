// Package database stores analysis reports for later review.
//
// Store keeps one row per analysis: the report as JSON, its status summary
// and its digest. The default backend is a SQLite file (modernc.org/sqlite,
// no cgo) in the sitescope data directory; a postgres:// DSN selects
// PostgreSQL through github.com/lib/pq instead. Queries are written with
// "?" placeholders and rebound for PostgreSQL.
//
// History is opt-in: nothing is written unless the user enables it.
package database
