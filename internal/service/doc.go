// Package service contains the application use cases behind the HTTP API.
//
// FutureViewingService records submissions as PENDING, hands them to the
// background worker once the record is committed, and serves status polling,
// listings and per-screen recent selections. ScreenService registers the
// display surfaces that consume completed viewings.
//
// Services depend on store interfaces and a store.Transactor, never on a
// concrete database, and translate store errors into the sentinels below.
package service
