package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptReadme is written next to the prompt files.
const promptReadme = `# markscan prompts

Prompts sent to the cloud OCR engine (ocr.engine = "vertex") with every scan.

- transcribe.txt: how the model should transcribe a marksheet image

Edits are picked up the next time markscan starts. Delete a file to get
its default back.
`

// defaultPrompts are the built-in prompts, keyed by name.
var defaultPrompts = map[string]string{
	driven.PromptTranscribe: `You are reading a scanned university marksheet or result certificate.
Transcribe every piece of printed and handwritten text exactly as it appears.
Keep the original line breaks and the order of labels and values.
Do not translate, correct, summarise or add anything.
Return only the transcribed text.`,
}

// PromptStore serves prompts from <dir>/<name>.txt. Missing files fall
// back to the built-in default. The directory is seeded with the defaults
// on the first Load, never in the constructor.
type PromptStore struct {
	dir string

	seed    sync.Once
	seedErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.markscan/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".markscan", "prompts")
	}
	return &PromptStore{dir: dir, cache: map[string]string{}}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named prompt.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(func() { s.seedErr = s.seedDefaults() })

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	fallback, known := defaultPrompts[name]
	if s.seedErr != nil {
		if known {
			return fallback, nil
		}
		return "", s.seedErr
	}

	data, err := os.ReadFile(s.path(name))
	switch {
	case err == nil:
		prompt = strings.TrimSpace(string(data))
	case known:
		prompt = fallback
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = map[string]string{}
	s.mu.Unlock()
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seedDefaults creates the directory, the default prompt files and the
// README. Existing files are left alone.
func (s *PromptStore) seedDefaults() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for name, content := range defaultPrompts {
		if err := writeIfMissing(s.path(name), content); err != nil {
			return fmt.Errorf("create default prompt %q: %w", name, err)
		}
	}
	return writeIfMissing(filepath.Join(s.dir, "README.md"), promptReadme)
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
