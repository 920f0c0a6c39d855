package domain

// IngestFailure records one document that could not be ingested.
type IngestFailure struct {
	// Path is the failed input file.
	Path string

	// Kind classifies the failure (see ErrorKind).
	Kind string

	// Reason is the underlying error message.
	Reason string
}

// IngestReport summarises a batch ingestion run. A report is always
// returned, even when individual documents fail or the batch is
// cancelled part-way through.
type IngestReport struct {
	// Ingested counts documents extracted, chunked, embedded and indexed.
	Ingested int

	// Skipped counts documents left untouched because their content
	// hash matched the stored version.
	Skipped int

	// Failed counts documents that errored.
	Failed int

	// Failures lists the per-path failure details.
	Failures []IngestFailure
}

// Total returns the number of paths the report covers.
func (r *IngestReport) Total() int {
	return r.Ingested + r.Skipped + r.Failed
}
