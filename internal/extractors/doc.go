// Package extractors provides per-format document extraction.
//
// Each extractor implements driven.Extractor for one or more formats and
// is dispatched through the Registry by format tag. Extractors produce
// domain.Document values with the full extracted text and, for utility
// bills, structured fields recovered from the layout.
package extractors
