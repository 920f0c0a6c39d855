package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

// writeDocx builds a minimal DOCX archive on disk.
func writeDocx(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "letter.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

const documentXMLBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtract_ParagraphsAndRuns(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": documentXMLBody,
	})

	doc, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.FormatDOCX, doc.Format)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", doc.Content)
	assert.Equal(t, "letter", doc.Title)
	assert.Equal(t, 1.0, doc.Confidence)
	assert.NotEmpty(t, doc.ContentHash)
}

func TestExtract_TitleFromCoreProperties(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/document.xml": documentXMLBody,
		"docProps/core.xml": `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>March Service Agreement</dc:title>
</cp:coreProperties>`,
	})

	doc, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "March Service Agreement", doc.Title)
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	path := writeDocx(t, map[string]string{
		"word/other.xml": "<x/>",
	})

	_, err := New().Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_NotAZipArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain bytes"), 0o644))

	_, err := New().Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.docx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatDOCX}, New().Formats())
}
