package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/valter-silva-au/iar/internal/core"
)

// DefaultOllamaURL is the address of a locally running Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaConfig configures an OllamaBackend.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout. Used by tests.
	HTTPClient *http.Client
}

// OllamaBackend runs prompts through the Ollama generate API. Models whose
// name contains "cloud" run in extended mode.
type OllamaBackend struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaBackend creates an OllamaBackend. It does not contact the server;
// call Probe to check availability.
func NewOllamaBackend(cfg OllamaConfig) *OllamaBackend {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &OllamaBackend{baseURL: baseURL, model: model, client: client}
}

// Name implements core.EnhancerBackend.
func (b *OllamaBackend) Name() string {
	return "ollama:" + b.model
}

// Extended reports whether the model is an Ollama cloud model.
func (b *OllamaBackend) Extended() bool {
	return strings.Contains(strings.ToLower(b.model), "cloud")
}

// Probe checks that the backend can serve requests. Local models are
// checked by listing installed models; cloud models, which may not be
// listed, by a one-token generation.
func (b *OllamaBackend) Probe(ctx context.Context) error {
	if b.Extended() {
		_, err := b.generate(ctx, "Hello", core.GenerateOptions{MaxOutputTokens: 1})
		if err != nil {
			return fmt.Errorf("probing ollama cloud model %s: %w", b.model, err)
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("creating ollama probe request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable at %s: %w", b.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama probe returned status %d", resp.StatusCode)
	}
	return nil
}

// Generate implements core.EnhancerBackend. An empty string with a nil
// error means the model answered but produced nothing usable.
func (b *OllamaBackend) Generate(ctx context.Context, prompt string, opts core.GenerateOptions) (string, error) {
	result, err := b.generate(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	if text := strings.TrimSpace(result.Response); text != "" {
		return text, nil
	}
	return ExtractFromThinking(result.Thinking), nil
}

func (b *OllamaBackend) generate(ctx context.Context, prompt string, opts core.GenerateOptions) (*ollamaGenerateResponse, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxOutputTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding ollama response: %w", err)
	}
	return &result, nil
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Thinking string `json:"thinking,omitempty"`
	Done     bool   `json:"done"`
}

// --- Thinking-field extraction ---

// accomplishmentVerbs are the action verbs a sentence must start with to be
// picked out of a reasoning trace.
var accomplishmentVerbs = []string{
	"developed", "created", "prepared", "generated", "authored",
	"delivered", "produced", "designed", "implemented", "compiled",
	"drafted", "formulated", "analyzed", "conducted", "performed",
	"completed", "built", "constructed", "established", "organized",
}

var (
	quotedText      = regexp.MustCompile(`"([^"]+)"`)
	boldMarkup      = regexp.MustCompile(`\*\*.*?\*\*`)
	labelledQuote   = regexp.MustCompile(`(?i)\*\*.*?\*\*\s*["“]([^"“”]+)["”]`)
	sentenceBreak   = regexp.MustCompile(`[.!?]+`)
	instructionHint = []string{"thus", "need", "should", "must", "let me", "example"}
)

// ExtractFromThinking recovers an accomplishment sentence from a model's
// reasoning trace when its answer field is empty. It tries, in order: a
// quoted 3-20 word sentence starting with an action verb, a quoted string
// following a **Label**, and any 4-25 word sentence starting with an action
// verb that is not an instruction. It returns "" when nothing qualifies.
func ExtractFromThinking(thinking string) string {
	if strings.TrimSpace(thinking) == "" {
		return ""
	}

	for _, m := range quotedText.FindAllStringSubmatch(thinking, -1) {
		quote := strings.TrimSpace(m[1])
		n := len(strings.Fields(quote))
		if n < 3 || n > 20 || !startsWithAny(quote, accomplishmentVerbs) {
			continue
		}
		quote = strings.TrimSpace(boldMarkup.ReplaceAllString(quote, ""))
		if !strings.Contains(quote, ":") && !strings.ContainsRune(quote, '�') {
			return quote
		}
	}

	if m := labelledQuote.FindStringSubmatch(thinking); m != nil {
		return strings.TrimSpace(m[1])
	}

	for _, sentence := range sentenceBreak.Split(thinking, -1) {
		sentence = strings.TrimSpace(sentence)
		n := len(strings.Fields(sentence))
		if n < 4 || n > 25 || containsAny(strings.ToLower(sentence), instructionHint) {
			continue
		}
		if startsWithAny(sentence, accomplishmentVerbs[:9]) {
			return sentence
		}
	}
	return ""
}

func startsWithAny(s string, prefixes []string) bool {
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
