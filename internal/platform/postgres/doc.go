// Package postgres implements the future viewing and screen stores on
// PostgreSQL and owns the embedded goose migrations. Driver errors are mapped
// onto the store package's sentinel errors.
package postgres
