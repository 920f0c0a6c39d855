// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): extraction, chunking, embedding, vector
// indexing, persistence and answer generation.
package driven
