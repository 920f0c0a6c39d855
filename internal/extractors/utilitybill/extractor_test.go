package utilitybill

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
)

// fakeOCR is a canned OCR engine.
type fakeOCR struct {
	pages      []string
	regions    []string
	err        error
	available  bool
	calls      int
	tableCalls int
}

var _ driven.OCREngine = (*fakeOCR)(nil)

func (f *fakeOCR) RecognisePDF(context.Context, string) ([]string, error) {
	f.calls++
	return f.pages, f.err
}

func (f *fakeOCR) RecogniseTableRegions(context.Context, string) ([]string, error) {
	f.tableCalls++
	return f.regions, f.err
}

func (f *fakeOCR) Available() bool { return f.available }

// denseBillText is long enough per page to count as a real text layer.
var denseBillText = "Pacific Gas and Electric Company statement. " +
	"Account: 1234567890. Service Period: 03/01/2024 to 03/31/2024. " +
	"Your electric charges this month reflect 450 kWh of usage at the " +
	"residential rate, plus taxes and regulatory fees as itemised below. " +
	"Total Amount Due: $142.50. Please pay by 04/15/2024 to avoid late fees."

// billFixture writes a placeholder file and wires an extractor whose
// direct text extraction is replaced with a stub.
func billFixture(t *testing.T, ocr driven.OCREngine, text string, pages int, err error) (*Extractor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "march.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 placeholder"), 0o644))

	e := New(ocr)
	e.extractText = func(context.Context, string) (string, int, error) {
		return text, pages, err
	}
	return e, path
}

func TestExtract_DirectTextLayer(t *testing.T) {
	ocr := &fakeOCR{available: true}
	e, path := billFixture(t, ocr, denseBillText, 1, nil)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.FormatUtilityBill, doc.Format)
	assert.Equal(t, 0.9, doc.Confidence)
	assert.Equal(t, 0, ocr.calls, "dense text should not trigger OCR")

	assert.Equal(t, "142.50", doc.Fields[FieldTotalAmount])
	assert.Equal(t, "1234567890", doc.Fields[FieldAccountNumber])

	// Narrative text and synthesised field sentences both present.
	assert.Contains(t, doc.Content, "450 kWh of usage")
	assert.Contains(t, doc.Content, "Total amount due: $142.50.")
	assert.NotEmpty(t, doc.ContentHash)
}

func TestExtract_ScannedBillGoesThroughOCR(t *testing.T) {
	ocr := &fakeOCR{
		available: true,
		pages:     []string{denseBillText, "Page two: payment stub. Account: 1234567890."},
	}
	e, path := billFixture(t, ocr, "", 3, nil)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 0.6, doc.Confidence)
	assert.Equal(t, 1, ocr.calls)
	assert.Contains(t, doc.Content, "OCR Page 1")
	assert.Contains(t, doc.Content, "OCR Page 2")
	assert.Equal(t, "142.50", doc.Fields[FieldTotalAmount])
}

func TestExtract_TableRegionsReassociateColumns(t *testing.T) {
	// The flat OCR pass reads the two-column summary table column by
	// column, putting the previous balance next to the "Total Amount
	// Due" label; the row pass keeps each label with its own figure.
	flat := "Previous balance\nTotal Amount Due\nAccount number\n$130.25\n$142.50\n1234567890"
	ocr := &fakeOCR{
		available: true,
		pages:     []string{flat},
		regions: []string{
			"Previous balance $130.25\nTotal Amount Due $142.50\nAccount 1234567890",
		},
	}
	e, path := billFixture(t, ocr, "", 2, nil)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, ocr.tableCalls)
	assert.Equal(t, "142.50", doc.Fields[FieldTotalAmount])
	assert.Equal(t, "1234567890", doc.Fields[FieldAccountNumber])
}

func TestExtract_TableRegionsSkippedOnDirectText(t *testing.T) {
	ocr := &fakeOCR{available: true}
	e, path := billFixture(t, ocr, denseBillText, 1, nil)

	_, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, ocr.tableCalls, "text-layer bills need no table pass")
}

func TestExtract_SparseWithoutOCRKeepsDirectText(t *testing.T) {
	e, path := billFixture(t, nil, "Total due: $99.00", 2, nil)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, doc.Confidence)
	assert.Equal(t, "99.00", doc.Fields[FieldTotalAmount])
}

func TestExtract_MinimalOCRFallsBackToDirect(t *testing.T) {
	ocr := &fakeOCR{available: true, pages: []string{"smudge"}}
	e, path := billFixture(t, ocr, "Amount due: $55.25", 2, nil)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, doc.Confidence)
	assert.Equal(t, 1, ocr.calls)
	assert.Contains(t, doc.Content, "$55.25")
}

func TestExtract_OCRErrorFallsBackToDirect(t *testing.T) {
	ocr := &fakeOCR{available: true, err: errors.New("tesseract crashed")}
	e, path := billFixture(t, ocr, "Amount due: $55.25", 2, nil)

	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0.3, doc.Confidence)
}

func TestExtract_NoTextAnywhereFails(t *testing.T) {
	ocr := &fakeOCR{available: true, pages: []string{"   "}}
	e, path := billFixture(t, ocr, "", 1, nil)

	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_DirectErrorWithoutOCRFails(t *testing.T) {
	e, path := billFixture(t, nil, "", 0, errors.New("encrypted pdf"))

	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encrypted pdf")
}

func TestExtract_MissingFile(t *testing.T) {
	e := New(nil)
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatUtilityBill}, New(nil).Formats())
}

func TestScanned(t *testing.T) {
	assert.True(t, scanned("tiny", 1))
	assert.True(t, scanned(strings.Repeat("a", 300), 3))
	assert.False(t, scanned(strings.Repeat("a", 300), 1))
	assert.True(t, scanned("", 0))
}
