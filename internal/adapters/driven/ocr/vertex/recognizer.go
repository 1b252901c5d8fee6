// Package vertex transcribes marksheets with a Gemini model on Vertex AI.
//
// The model is asked for a verbatim transcription only. Field extraction
// stays with the local extractor so both engines feed it the same kind of
// text.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Ensure Recognizer implements the interface.
var _ driven.Recognizer = (*Recognizer)(nil)

// Defaults applied by New.
const (
	DefaultRegion = "us-central1"
	DefaultModel  = "gemini-1.5-pro"
)

const systemInstruction = "You are an OCR engine for university marksheets. " +
	"You output the text printed on the page and nothing else."

// fallbackPrompt is used when no prompt store is configured.
const fallbackPrompt = "Transcribe every line of text on this marksheet exactly as printed, " +
	"top to bottom, one printed line per output line. Do not summarise, " +
	"translate or correct anything. Output plain text without markdown."

// ErrRefused indicates the model declined to transcribe the image.
var ErrRefused = errors.New("model refused to transcribe")

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"i can't help",
	"as a large language model",
}

// generator is the part of *genai.GenerativeModel the recognizer uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Config selects the project, region and model.
type Config struct {
	ProjectID string
	Region    string
	Model     string
}

// Recognizer is a Vertex AI backed driven.Recognizer.
type Recognizer struct {
	client  *genai.Client
	model   generator
	prompts driven.PromptStore
}

// New creates a recognizer. prompts may be nil.
func New(ctx context.Context, cfg Config, prompts driven.PromptStore) (*Recognizer, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: vertex project id must be set", domain.ErrInvalidInput)
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0),
	}

	return &Recognizer{client: client, model: model, prompts: prompts}, nil
}

// Close releases the client.
func (r *Recognizer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Name identifies the engine.
func (r *Recognizer) Name() string { return "vertex" }

// Recognize sends the image with the transcription prompt.
func (r *Recognizer) Recognize(ctx context.Context, img domain.Image) (string, error) {
	prompt, err := r.prompt()
	if err != nil {
		return "", err
	}

	blob := genai.Blob{MIMEType: mimeType(img), Data: img.Data}
	resp, err := r.model.GenerateContent(ctx, blob, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text, parts := responseText(resp)
	if parts > 1 {
		logger.Debug("vertex: %s: concatenated %d text parts", img.Filename, parts)
	}
	if refused(text) {
		logger.Warn("vertex: %s: model refused: %q", img.Filename, text)
		return "", ErrRefused
	}
	return text, nil
}

func (r *Recognizer) prompt() (string, error) {
	if r.prompts == nil {
		return fallbackPrompt, nil
	}
	prompt, err := r.prompts.Load(driven.PromptTranscribe)
	if err != nil {
		return "", fmt.Errorf("loading prompt: %w", err)
	}
	return prompt, nil
}

func mimeType(img domain.Image) string {
	if img.ContentType != "" {
		return img.ContentType
	}
	if ct := domain.ContentTypeFor(img.Filename); ct != "" {
		return ct
	}
	return "image/png"
}

// responseText joins the text parts of the first candidate and strips any
// code fence the model wrapped around them.
func responseText(resp *genai.GenerateContentResponse) (string, int) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", 0
	}

	var b strings.Builder
	parts := 0
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
			parts++
		}
	}

	text := strings.TrimSpace(b.String())
	if strings.HasPrefix(text, "```") {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text), parts
}

func refused(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
