// Package sqlite persists documents, chunks and the query log in a single
// SQLite file, ~/.planroom/data/planroom.db by default.
//
// The in-memory index is rebuilt from the chunks table on start, so chunk
// rows carry their analysed terms as JSON and their embedding as a
// little-endian float32 blob.
//
// modernc.org/sqlite is a pure Go driver, so release builds need no cgo.
// The database runs in WAL mode with foreign keys on, which lets deleting
// a document cascade to its chunks.
package sqlite
