// Package poller fetches registry endpoints for buildbar.
//
// This package is internal to buildbar. It owns the HTTP side of a
// collection: one GET per monitor, all issued concurrently and joined
// before the caller proceeds.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with connection pooling and a bounded body buffer
//   - [FanOut]: runs one task per monitor and waits for all of them
//   - [Response]: the outcome of a single fetch
//
// Users of the buildbar library should not need to interact with this
// package directly.
package poller
