package driven

// PromptStore provides prompt templates for model-backed recognizers.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Implementations fall back to a built-in default when one exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptTranscribe asks a multimodal model to transcribe a marksheet
	// image verbatim. It takes no placeholders.
	PromptTranscribe = "transcribe"
)
