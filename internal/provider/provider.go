// Package provider implements suggestion provider adapters for assisted
// writing: grounded continuation of a draft tail and whole-draft revision.
package provider

import (
	"context"
	"time"
)

// DefaultTimeout is the default timeout for provider calls
const DefaultTimeout = 20 * time.Second

// DefaultMaxCandidates caps how many continuations one call may return
const DefaultMaxCandidates = 3

// Source describes one piece of evidence backing a suggestion.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Suggestion is one candidate continuation plus its provenance.
type Suggestion struct {
	// Text is the continuation, ready to insert at the caret.
	Text string `json:"text"`

	// Sources lists the grounding evidence the provider used.
	Sources []Source `json:"sources,omitempty"`

	// Score is the provider-reported confidence, higher is better.
	Score float64 `json:"score"`
}

// SuggestRequest is the request for a continuation of the draft tail.
type SuggestRequest struct {
	// Tail is the bounded context window ending at the caret.
	Tail string

	// TailKey is the keystroke-stable fingerprint of Tail, used as the
	// cache key by caching wrappers. Optional.
	TailKey string

	// MaxCandidates caps the number of returned suggestions; zero means
	// DefaultMaxCandidates.
	MaxCandidates int
}

// SuggestResponse is the response to a SuggestRequest. Suggestions are
// ordered best first.
type SuggestResponse struct {
	ProviderName string
	Suggestions  []Suggestion
	LatencyMs    int64
}

// ReviseRequest asks for a whole-draft rewrite under an instruction.
type ReviseRequest struct {
	// Text is the full draft to revise.
	Text string

	// Instruction steers the revision (e.g. "fix grammar and typos").
	Instruction string
}

// ReviseResponse carries the revised draft.
type ReviseResponse struct {
	ProviderName string
	Text         string
	LatencyMs    int64
}

// Provider is the suggestion collaborator the assist engine fetches from.
type Provider interface {
	// Name returns the provider name (e.g. "gemini")
	Name() string

	// Available checks whether the provider can serve calls (API key present)
	Available() bool

	// Suggest returns candidate continuations for a draft tail
	Suggest(ctx context.Context, req *SuggestRequest) (*SuggestResponse, error)
}

// Reviser is the whole-draft edit collaborator. Separate from Provider so
// hosts can wire continuation and revision to different backends.
type Reviser interface {
	// Revise rewrites a full draft per the request instruction
	Revise(ctx context.Context, req *ReviseRequest) (*ReviseResponse, error)
}
