//go:build integration

// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database. Tests are skipped unless DATABASE_URL is set.
//
// Most tests run inside WithTx so their writes are rolled back. Tests that
// exercise races between connections need committed rows; they create data
// with fresh IDs and register cleanup with DeleteViewings and DeleteScreens.
package testdb
