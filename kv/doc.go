// Package kv provides the key-value storage layer used by authkit for
// attempt counters and persisted credentials.
//
// Four backends implement [Store]: an in-process [Memory] store, a
// [Redis] store, a single-file [SQLite] store, and a [Sealed] wrapper
// that encrypts values at rest with a key derived from a device secret.
// [Open] selects between the sealed and plain persistent backends based
// on whether a device secret is available; the selection is fixed for
// the lifetime of the returned store.
package kv
