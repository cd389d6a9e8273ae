// Package sqlite provides a SQLite-based implementation of the index and
// manifest stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements both store interfaces
// through a single database connection:
//
//   - IndexStore: Chunk vectors, one logical collection per name
//   - ManifestStore: Collection bindings and ingested file records
//
// Vectors are stored as little-endian float32 blobs. Queries compute cosine
// distance in Go over the whole collection, which is adequate for a
// cookbook-sized corpus.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.ayten/index/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
