package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/inkwell-sh/inkwell/internal/sanitize"
)

// GeminiBaseURL is the default generateContent endpoint root.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// TestBaseURL is overridden in tests to point at a local httptest server.
var TestBaseURL string

// DefaultGeminiModel is used when the config names no model.
const DefaultGeminiModel = "gemini-2.0-flash"

// geminiHTTPClient is shared across all Gemini calls so connections are
// reused instead of re-dialing per keystroke-triggered fetch.
var geminiHTTPClient = &http.Client{
	Transport: &http.Transport{
		TLSHandshakeTimeout: 15 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 2,
	},
}

// GeminiConfig configures the Gemini adapter.
type GeminiConfig struct {
	// Model is the model ID, e.g. "gemini-2.0-flash".
	Model string

	// APIKeyEnv names the environment variable holding the generation key.
	// Defaults to "GEMINI_API_KEY".
	APIKeyEnv string

	// SearchKeyEnv names the environment variable holding the grounded
	// search key. Defaults to "SEARCH_API_KEY". Only consulted when
	// UseSearch is set.
	SearchKeyEnv string

	// UseSearch enables grounded search so suggestions carry sources.
	UseSearch bool

	// Redact scrubs secrets from outgoing text before the call.
	Redact bool

	// Timeout bounds each HTTP call; zero means DefaultTimeout.
	Timeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Gemini calls the Google generative-language HTTP API for continuations
// and revisions.
type Gemini struct {
	cfg    GeminiConfig
	logger *slog.Logger
}

// NewGemini creates a Gemini adapter, applying config defaults.
func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.SearchKeyEnv == "" {
		cfg.SearchKeyEnv = "SEARCH_API_KEY"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{cfg: cfg, logger: logger}
}

// Name returns "gemini".
func (g *Gemini) Name() string { return "gemini" }

// Available reports whether the generation key is present.
func (g *Gemini) Available() bool {
	return os.Getenv(g.cfg.APIKeyEnv) != ""
}

// Suggest asks for continuations of the draft tail, grounded in search
// results when the adapter is configured for it.
func (g *Gemini) Suggest(ctx context.Context, req *SuggestRequest) (*SuggestResponse, error) {
	apiKey := os.Getenv(g.cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, errorf(KindGenerationUnavailable, "generation api key not set: %s", g.cfg.APIKeyEnv)
	}
	if g.cfg.UseSearch && os.Getenv(g.cfg.SearchKeyEnv) == "" {
		return nil, errorf(KindSearchUnconfigured, "search api key not set: %s", g.cfg.SearchKeyEnv)
	}

	max := req.MaxCandidates
	if max <= 0 {
		max = DefaultMaxCandidates
	}

	tail := req.Tail
	if g.cfg.Redact {
		tail = sanitize.Redact(tail)
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildSuggestPrompt(tail)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:  max,
			MaxOutputTokens: 160,
			Temperature:     0.7,
		},
	}
	if g.cfg.UseSearch {
		body.Tools = []geminiTool{{GoogleSearch: &struct{}{}}}
	}

	start := time.Now()
	raw, err := g.post(ctx, apiKey, body)
	if err != nil {
		return nil, err
	}

	suggestions, err := parseSuggestions(raw, max, g.cfg.UseSearch)
	if err != nil {
		return nil, err
	}

	latency := time.Since(start).Milliseconds()
	g.logger.Debug("gemini suggest done",
		"candidates", len(suggestions),
		"latency_ms", latency)
	return &SuggestResponse{
		ProviderName: g.Name(),
		Suggestions:  suggestions,
		LatencyMs:    latency,
	}, nil
}

// Revise rewrites the full draft under the given instruction.
func (g *Gemini) Revise(ctx context.Context, req *ReviseRequest) (*ReviseResponse, error) {
	apiKey := os.Getenv(g.cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, errorf(KindGenerationUnavailable, "generation api key not set: %s", g.cfg.APIKeyEnv)
	}

	text := req.Text
	if g.cfg.Redact {
		text = sanitize.Redact(text)
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildRevisePrompt(text, req.Instruction)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:  1,
			MaxOutputTokens: 8192,
			Temperature:     0.3,
		},
	}

	start := time.Now()
	raw, err := g.post(ctx, apiKey, body)
	if err != nil {
		return nil, err
	}

	revised := firstCandidateText(raw)
	if revised == "" {
		return nil, errorf(KindUnknown, "gemini returned no revision")
	}

	return &ReviseResponse{
		ProviderName: g.Name(),
		Text:         cleanCandidateText(revised),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// post sends one generateContent call and maps failures to typed errors.
func (g *Gemini) post(ctx context.Context, apiKey string, body geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	base := GeminiBaseURL
	if TestBaseURL != "" {
		base = TestBaseURL
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", base, g.cfg.Model)

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	resp, err := geminiHTTPClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errorf(KindUnknown, "gemini request timed out after %v", g.cfg.Timeout)
		}
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, g.statusError(resp, rawBody)
	}

	var out geminiResponse
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// statusError converts a non-2xx response into a typed Error. Quota
// rejections keep the raw body in the message so retry hints like
// "retryDelay":"30s" survive for downstream classification.
func (g *Gemini) statusError(resp *http.Response, rawBody []byte) error {
	var errResp struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	status := ""
	if json.Unmarshal(rawBody, &errResp) == nil && errResp.Error != nil {
		status = errResp.Error.Status
		msg = fmt.Sprintf("gemini: %s: %s", status, errResp.Error.Message)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		retry := parseRetryAfterHeader(resp.Header)
		if retry == 0 {
			retry = ParseRetryDelay(string(rawBody))
		}
		if status == "" {
			status = "RESOURCE_EXHAUSTED"
		}
		full := fmt.Sprintf("%s: %s %s", msg, status, strings.TrimSpace(string(rawBody)))
		g.logger.Warn("gemini quota exhausted", "retry_after", retry)
		return quotaError(full, retry)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || status == "PERMISSION_DENIED":
		return errorf(KindGenerationUnavailable, "%s", msg)
	default:
		return errorf(KindUnknown, "%s", msg)
	}
}

func buildSuggestPrompt(tail string) string {
	var b strings.Builder
	b.WriteString("You continue drafts for a writing tool. Given the end of a draft, ")
	b.WriteString("write the next one or two sentences in the same voice. ")
	b.WriteString("Reply with the continuation only: no preamble, no quotes, no markdown.\n\n")
	b.WriteString("Draft so far:\n")
	b.WriteString(tail)
	return b.String()
}

func buildRevisePrompt(text, instruction string) string {
	if instruction == "" {
		instruction = "Fix grammar, spelling and punctuation. Keep the author's voice and meaning."
	}
	var b strings.Builder
	b.WriteString("Revise the draft below. ")
	b.WriteString(instruction)
	b.WriteString("\nReply with the full revised draft only: no preamble, no quotes, no markdown fences.\n\n")
	b.WriteString(text)
	return b.String()
}

// Gemini wire types, request side.

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	Tools            []geminiTool            `json:"tools,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type geminiGenerationConfig struct {
	CandidateCount  int     `json:"candidateCount,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// Gemini wire types, response side.

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content           *geminiContent           `json:"content"`
	FinishReason      string                   `json:"finishReason"`
	AvgLogprobs       float64                  `json:"avgLogprobs"`
	GroundingMetadata *geminiGroundingMetadata `json:"groundingMetadata"`
}

type geminiGroundingMetadata struct {
	GroundingChunks []geminiGroundingChunk `json:"groundingChunks"`
}

type geminiGroundingChunk struct {
	Web *geminiWebSource `json:"web"`
}

type geminiWebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
