// Package sqlite provides the SQLite-backed attendance ledger the anchor
// writes its scan reports to.
//
// Schema changes live in migrations/ as numbered .sql files with a
// "-- +migrate Up" section; Open applies any that are missing.
package sqlite
