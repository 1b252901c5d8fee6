package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewPromptStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".markscan", "prompts"), store.Dir())
	assert.NoDirExists(t, store.Dir(), "constructor does no I/O")
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptTranscribe)
	require.NoError(t, err)
	assert.Contains(t, prompt, "marksheet")

	assert.FileExists(t, filepath.Join(dir, "transcribe.txt"))
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestPromptStore_Load_CustomContentIsTrimmed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transcribe.txt"), []byte("\n  Read the sheet.  \n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptTranscribe)
	require.NoError(t, err)
	assert.Equal(t, "Read the sheet.", prompt)

	// The existing file is not replaced by the default.
	raw, err := os.ReadFile(filepath.Join(dir, "transcribe.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Read the sheet.")
}

func TestPromptStore_Load_FallsBackWhenFileRemoved(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptTranscribe)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "transcribe.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptTranscribe)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptTranscribe], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("does_not_exist")
	assert.Error(t, err)
}

func TestPromptStore_Reload_PicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptTranscribe)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transcribe.txt"), []byte("edited"), 0600))

	cached, err := store.Load(driven.PromptTranscribe)
	require.NoError(t, err)
	assert.NotEqual(t, "edited", cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptTranscribe)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptTranscribe)
			assert.NoError(t, err)
			assert.NotEmpty(t, prompt)
		}()
	}
	wg.Wait()
}
