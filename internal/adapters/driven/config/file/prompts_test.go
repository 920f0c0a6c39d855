package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-labs/docquery-cli/internal/core/ports/driven"
)

func TestPromptStore_ReturnsDefaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "document assistant")

	bill, err := store.Load(driven.PromptBillSystem)
	require.NoError(t, err)
	assert.Contains(t, bill, "utility bill analyst")
}

func TestPromptStore_CreatesDefaultFilesOnFirstLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)

	for _, name := range []string{driven.PromptAnswerSystem, driven.PromptBillSystem} {
		_, err := os.Stat(filepath.Join(dir, name+".txt"))
		assert.NoError(t, err, "expected default file for %s", name)
	}
	_, err = os.Stat(filepath.Join(dir, "README.md"))
	assert.NoError(t, err)
}

func TestPromptStore_UserEditsOverrideDefaults(t *testing.T) {
	dir := t.TempDir()
	custom := "Answer like a pirate."
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptAnswerSystem+".txt"), []byte(custom+"\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_ReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptBillSystem)
	require.NoError(t, err)

	edited := "Edited bill prompt."
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.PromptBillSystem+".txt"), []byte(edited), 0600))

	store.Reload()
	prompt, err := store.Load(driven.PromptBillSystem)
	require.NoError(t, err)
	assert.Equal(t, edited, prompt)
}

func TestPromptStore_UnknownPromptErrors(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no_such_prompt")
	assert.Error(t, err)
}
