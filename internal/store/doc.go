// Package store declares the persistence interfaces for future viewings,
// screens and their viewing records, together with the transaction helper
// and the errors every implementation must return.
package store
