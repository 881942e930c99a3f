// Package testutils provides in-memory collaborators and fixtures for tests.
//
// MemoryStore keeps future viewings, screens and viewing records in maps and
// honors the same contracts as the Postgres stores: terminal writes only
// succeed on PENDING viewings and a viewing record batch is rejected as a
// whole when any (viewing, screen) pair already exists.
//
//	mem := testutils.NewMemoryStore()
//	fv := testutils.MustInsertViewing(t, mem, testutils.WithViewingStatus(domain.ViewingStatusCompleted))
//	selector := recency.NewSelector(mem.Viewings(), mem.Screens(), testutils.MemoryTransactor{}, log)
package testutils
