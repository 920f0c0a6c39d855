// Package domain contains the core business entities for the docquery
// retrieval pipeline: documents, chunks, retrieval results and ingestion
// reports. It has no dependencies on adapters or infrastructure.
package domain
