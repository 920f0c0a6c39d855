// Package services contains the core orchestration logic for the
// document pipeline. Services depend only on ports, never on concrete
// adapters, keeping the ingestion and retrieval flows testable with
// in-memory implementations.
package services
