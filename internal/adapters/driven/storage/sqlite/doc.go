// Package sqlite provides SQLite-backed persistence for documents,
// chunks and embeddings. A single database file holds the document
// store and the vector index so delete-then-insert re-ingestion stays
// consistent across both.
package sqlite
