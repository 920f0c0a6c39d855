package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-labs/docquery-cli/internal/core/domain"
)

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meter_readings.txt")
	require.NoError(t, os.WriteFile(path, []byte("  March reading: 450 kWh\r\nApril reading: 430 kWh  "), 0o644))

	doc, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.FormatText, doc.Format)
	assert.Equal(t, "meter readings", doc.Title)
	assert.Equal(t, "March reading: 450 kWh\nApril reading: 430 kWh", doc.Content)
	assert.Equal(t, 1.0, doc.Confidence)
	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.ContentHash)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatText}, New().Formats())
}
