package domain

import (
	"path/filepath"
	"strings"
)

// Format identifies the kind of source file a document was extracted from.
// Extraction is dispatched through an explicit registry keyed by Format.
type Format string

const (
	// FormatPDF is a regular PDF document.
	FormatPDF Format = "pdf"

	// FormatDOCX is a Word document.
	FormatDOCX Format = "docx"

	// FormatUtilityBill is a utility bill PDF, usually scanned.
	// Bills get layered extraction with OCR and structured field recovery.
	FormatUtilityBill Format = "utility_bill"

	// FormatText is a plain text file.
	FormatText Format = "text"

	// FormatUnknown marks files no extractor handles.
	FormatUnknown Format = ""
)

// billIndicators are filename fragments that mark a PDF as a utility bill.
// Taken from the naming conventions of the major US utilities.
var billIndicators = []string{
	"pge", "pg&e", "pacific gas", "electric",
	"bill", "utility", "energy", "gas",
	"edison", "sdge", "peco", "con ed",
}

// DetectFormat sniffs the document format from a file path.
// PDF files whose names look like utility bills are classified as
// FormatUtilityBill so they receive the specialised extraction path.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		if IsUtilityBillName(path) {
			return FormatUtilityBill
		}
		return FormatPDF
	case ".docx":
		// Legacy binary .doc is not an OOXML container; no extractor
		// can parse it, so it is not claimed.
		return FormatDOCX
	case ".txt", ".md":
		return FormatText
	default:
		return FormatUnknown
	}
}

// IsUtilityBillName reports whether a filename looks like a utility bill.
func IsUtilityBillName(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, indicator := range billIndicators {
		if strings.Contains(name, indicator) {
			return true
		}
	}
	return false
}

// Valid reports whether the format is one the pipeline can ingest.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatUtilityBill, FormatText:
		return true
	default:
		return false
	}
}
