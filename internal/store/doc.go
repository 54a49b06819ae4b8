// Package store provides the persistence backends for license records.
//
// FileStore persists the whole snapshot as a single JSON document using a
// write-then-rename discipline, so a crashed or failed save never corrupts
// the previously persisted state. MemoryStore is a map-backed
// implementation for tests and embedded use. Both satisfy license.Store
// and are safe for concurrent use.
package store
