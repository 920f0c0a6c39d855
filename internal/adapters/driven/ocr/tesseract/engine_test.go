package tesseract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t1000\t1400\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t10\t100\t400\t20\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t100\t50\t20\t96.5\tTotal\n" +
	"5\t1\t1\t1\t1\t2\t70\t101\t60\t20\t95.0\tAmount\n" +
	"5\t1\t1\t1\t1\t3\t140\t100\t40\t20\t94.1\tDue\n" +
	"5\t1\t2\t1\t1\t1\t600\t102\t70\t19\t92.8\t$142.50\n" +
	"5\t1\t1\t1\t2\t1\t10\t140\t80\t20\t96.0\tAccount\n" +
	"5\t1\t2\t1\t2\t1\t600\t141\t100\t19\t93.3\t1234567890\n" +
	"5\t1\t2\t1\t3\t1\t600\t180\t40\t19\t12.0\t \n"

func TestParseTSVWords(t *testing.T) {
	words := parseTSVWords(sampleTSV)
	require.Len(t, words, 6, "only non-blank word-level rows count")

	assert.Equal(t, "Total", words[0].text)
	assert.Equal(t, 10, words[0].left)
	assert.Equal(t, 100, words[0].top)
	assert.Equal(t, 120, words[0].bottom)
	assert.Equal(t, "$142.50", words[3].text)
}

func TestAssembleRows_ReassociatesColumns(t *testing.T) {
	// The label column and the amount column come from different
	// blocks; vertical overlap stitches them back into rows.
	rows := assembleRows(parseTSVWords(sampleTSV))
	assert.Equal(t, "Total Amount Due $142.50\nAccount 1234567890", rows)
}

func TestAssembleRows_OrdersWithinRowByLeft(t *testing.T) {
	words := []tsvWord{
		{left: 500, top: 10, bottom: 30, text: "$99.00"},
		{left: 10, top: 12, bottom: 28, text: "Gas"},
		{left: 60, top: 11, bottom: 29, text: "charges"},
	}
	assert.Equal(t, "Gas charges $99.00", assembleRows(words))
}

func TestAssembleRows_SeparatesNonOverlappingRows(t *testing.T) {
	words := []tsvWord{
		{left: 10, top: 10, bottom: 30, text: "one"},
		{left: 10, top: 40, bottom: 60, text: "two"},
	}
	assert.Equal(t, "one\ntwo", assembleRows(words))
}

func TestAssembleRows_Empty(t *testing.T) {
	assert.Empty(t, assembleRows(nil))
}

func TestNew_Defaults(t *testing.T) {
	e := New(Config{})
	assert.Equal(t, "tesseract", e.tesseract)
	assert.Equal(t, "pdftoppm", e.pdftoppm)
	assert.Equal(t, DefaultDPI, e.dpi)
	assert.Equal(t, DefaultMaxPages, e.maxPages)
	assert.Equal(t, "eng", e.language)
}

func TestAvailable_MissingBinaries(t *testing.T) {
	e := New(Config{
		TesseractPath: "/nonexistent/tesseract",
		PdftoppmPath:  "/nonexistent/pdftoppm",
	})
	assert.False(t, e.Available())
}
