package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// stubExtractor records dispatch.
type stubExtractor struct {
	formats []domain.Format
	called  string
}

func (s *stubExtractor) Formats() []domain.Format { return s.formats }

func (s *stubExtractor) Extract(_ context.Context, path string) (*domain.Document, error) {
	s.called = path
	return &domain.Document{ID: "stub", Path: path, Format: s.formats[0]}, nil
}

func TestRegistry_DispatchesByDetectedFormat(t *testing.T) {
	text := &stubExtractor{formats: []domain.Format{domain.FormatText}}
	pdf := &stubExtractor{formats: []domain.Format{domain.FormatPDF}}

	r := NewRegistry()
	r.Register(text)
	r.Register(pdf)

	_, err := r.Extract(context.Background(), "/docs/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "/docs/notes.txt", text.called)
	assert.Empty(t, pdf.called)

	_, err = r.Extract(context.Background(), "/docs/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/docs/report.pdf", pdf.called)
}

func TestRegistry_UnsupportedFormat(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extract(context.Background(), "/docs/data.xyz")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestRegistry_Supports(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{formats: []domain.Format{domain.FormatText}})
	r.Register(&stubExtractor{formats: []domain.Format{domain.FormatDOCX}})

	assert.True(t, r.Supports("a.txt"))
	assert.True(t, r.Supports("a.md"))
	assert.True(t, r.Supports("a.docx"))
	assert.False(t, r.Supports("a.pdf"))
	assert.False(t, r.Supports("a"))
	// Legacy binary .doc is not parseable and is never claimed.
	assert.False(t, r.Supports("a.doc"))
}

func TestRegistry_LaterRegistrationOverrides(t *testing.T) {
	generic := &stubExtractor{formats: []domain.Format{domain.FormatPDF, domain.FormatUtilityBill}}
	bills := &stubExtractor{formats: []domain.Format{domain.FormatUtilityBill}}

	r := NewRegistry()
	r.Register(generic)
	r.Register(bills)

	_, err := r.Extract(context.Background(), "/docs/pge-bill-march.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/docs/pge-bill-march.pdf", bills.called)
	assert.Empty(t, generic.called)
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "pge bill march", TitleFromPath("/bills/pge_bill-march.pdf"))
	assert.Equal(t, "notes", TitleFromPath("notes.txt"))
	assert.Equal(t, "README", TitleFromPath("/repo/README"))
}

func TestHashContent(t *testing.T) {
	a := HashContent([]byte("hello"))
	b := HashContent([]byte("hello"))
	c := HashContent([]byte("world"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestCleanText(t *testing.T) {
	in := "“Smart quotes” and – dashes\r\nline\n\n\n\nnext     \t   columns"
	got := CleanText(in)

	assert.Contains(t, got, `"Smart quotes"`)
	assert.Contains(t, got, "- dashes")
	assert.NotContains(t, got, "\r")
	assert.NotContains(t, got, "\n\n\n")
	assert.NotContains(t, got, "     ")
}

func TestCleanText_TrimsAndPreservesParagraphs(t *testing.T) {
	got := CleanText("  para one\n\npara two  ")
	assert.Equal(t, "para one\n\npara two", got)
}
