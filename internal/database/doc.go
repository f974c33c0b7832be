// Package database provides the persisted state of comet.
//
// StateDB stores, in a single SQLite file under the XDG data directory:
//   - The proxyEnabled flag, as a row of a small key-value table
//   - The toggle history, one row per handled message or startup recovery
//
// SQLite is accessed through modernc.org/sqlite, which is CGO-free and keeps
// cross-compilation for macOS and Windows trivial.
//
// MemoryStore implements the same contract in memory for tests and for
// commands that must not touch the user's state.
package database
