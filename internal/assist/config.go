package assist

import (
	"log/slog"
	"time"

	"github.com/inkwell-sh/inkwell/internal/textwin"
)

// Config tunes the trigger machine. Zero fields take defaults.
type Config struct {
	// MinWords is the tail word count required before the first automatic
	// fetch may be scheduled.
	MinWords int

	// FirstDelay is the inactivity debounce before the first automatic
	// fetch fires.
	FirstDelay time.Duration

	// CueDelay is the inactivity debounce before the continue cue
	// reappears once automatic fetching has stopped.
	CueDelay time.Duration

	// CueCooldown suppresses the continue cue after a dismissal or a
	// failed manual fetch.
	CueCooldown time.Duration

	// TailChars bounds the context tail length in runes.
	TailChars int

	// KeyTokens bounds the stable-key token count.
	KeyTokens int

	// MaxCandidates is passed through to the provider per fetch.
	MaxCandidates int

	// FetchTimeout bounds each provider call.
	FetchTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the stock trigger timings.
func DefaultConfig() Config {
	return Config{
		MinWords:      5,
		FirstDelay:    5 * time.Second,
		CueDelay:      1 * time.Second,
		CueCooldown:   15 * time.Second,
		TailChars:     textwin.DefaultMaxTail,
		KeyTokens:     textwin.DefaultKeyTokens,
		MaxCandidates: 3,
		FetchTimeout:  20 * time.Second,
	}
}

// applyDefaults fills unset fields from DefaultConfig.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.MinWords <= 0 {
		c.MinWords = def.MinWords
	}
	if c.FirstDelay <= 0 {
		c.FirstDelay = def.FirstDelay
	}
	if c.CueDelay <= 0 {
		c.CueDelay = def.CueDelay
	}
	if c.CueCooldown <= 0 {
		c.CueCooldown = def.CueCooldown
	}
	if c.TailChars <= 0 {
		c.TailChars = def.TailChars
	}
	if c.KeyTokens <= 0 {
		c.KeyTokens = def.KeyTokens
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = def.MaxCandidates
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
