// Package driving provides interfaces consumed by external actors
// (primary/inbound ports): the ingestion and query entry points.
package driving
