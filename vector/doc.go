// Package vector defines the record model consumed by the search core and the
// record stores that persist it. It includes:
//   - Vector, Kind, Record and the Reader/Store interfaces
//   - MemoryStore, SQLiteStore and BadgerStore implementations
//   - Embedding encoding (BLOB) and per-kind corpus inspection
package vector
