package extractors

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

// TitleFromPath derives a human-readable title from a file path.
func TitleFromPath(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// HashContent returns the hex sha256 of the raw source bytes.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var (
	collapseSpaces = regexp.MustCompile(`[ \t]{3,}`)
	collapseBlank  = regexp.MustCompile(`\n\s*\n+`)
)

// CleanText normalises extracted text: smart punctuation is flattened,
// excess whitespace collapsed, paragraph boundaries preserved.
func CleanText(text string) string {
	replacer := strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		" ", " ",
		"−", "-", "–", "-", "—", "-",
		"\r\n", "\n",
	)
	text = replacer.Replace(text)

	// Keep some spacing for column alignment but drop runs of it.
	text = collapseSpaces.ReplaceAllString(text, "   ")
	text = collapseBlank.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
