package provider

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a provider failure for the assist engine.
type Kind string

const (
	// KindQuota means the provider rejected the call for quota or rate
	// reasons; the suggestion channel must cool down.
	KindQuota Kind = "quota"

	// KindSearchUnconfigured means the grounded-search credential is missing.
	KindSearchUnconfigured Kind = "search_unconfigured"

	// KindGenerationUnavailable means the generation credential is missing
	// or rejected.
	KindGenerationUnavailable Kind = "generation_unavailable"

	// KindNoEvidence means the provider found no sources to ground on.
	KindNoEvidence Kind = "no_evidence"

	// KindUnknown is everything else.
	KindUnknown Kind = "unknown"
)

// DefaultQuotaCooldown applies when a quota error carries no retry hint.
const DefaultQuotaCooldown = 40 * time.Second

// Error is a classified provider failure. Adapters construct it directly;
// Classify recovers the same information from foreign errors by message
// inspection.
type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration // quota errors only, zero when the provider gave no hint
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// UserMessage returns the text shown next to the suggestion UI for a kind.
func UserMessage(k Kind) string {
	switch k {
	case KindQuota:
		return "quota exceeded, try later"
	case KindSearchUnconfigured:
		return "search service not configured"
	case KindGenerationUnavailable:
		return "AI service not available"
	case KindNoEvidence:
		return "no relevant sources found"
	default:
		return "failed to get suggestion"
	}
}

// Marker substrings for message-based classification, checked in order.
// Quota first: a quota payload may also mention the API key.
var kindMarkers = []struct {
	kind    Kind
	markers []string
}{
	{KindQuota, []string{"resource_exhausted", "quota", "rate limit", "too many requests"}},
	{KindSearchUnconfigured, []string{"search_api_key", "search api key", "search service"}},
	{KindGenerationUnavailable, []string{"gemini_api_key", "generation api key", "api_key_invalid", "api key not"}},
	{KindNoEvidence, []string{"no relevant sources", "no sources found", "no grounding"}},
}

// retryDelayPattern matches the machine-readable retry hint embedded in
// quota error payloads, e.g. `"retryDelay":"30s"`.
var retryDelayPattern = regexp.MustCompile(`"retryDelay"\s*:\s*"([^"]+)"`)

// Classify maps any suggestion-fetch error to a kind plus the cooldown the
// caller should apply (zero for non-quota kinds). Typed *Error values are
// trusted; everything else is classified by message content.
func Classify(err error) (Kind, time.Duration) {
	if err == nil {
		return KindUnknown, 0
	}

	var pe *Error
	if errors.As(err, &pe) && pe.Kind != "" && pe.Kind != KindUnknown {
		if pe.Kind == KindQuota {
			if pe.RetryAfter > 0 {
				return KindQuota, pe.RetryAfter
			}
			if d := ParseRetryDelay(pe.Message); d > 0 {
				return KindQuota, d
			}
			return KindQuota, DefaultQuotaCooldown
		}
		return pe.Kind, 0
	}

	msg := strings.ToLower(err.Error())
	for _, km := range kindMarkers {
		for _, marker := range km.markers {
			if strings.Contains(msg, marker) {
				if km.kind == KindQuota {
					if d := ParseRetryDelay(err.Error()); d > 0 {
						return KindQuota, d
					}
					return KindQuota, DefaultQuotaCooldown
				}
				return km.kind, 0
			}
		}
	}
	return KindUnknown, 0
}

// ParseRetryDelay extracts a retry hint like `"retryDelay":"30s"` from an
// error message. Returns zero when absent or unparseable.
func ParseRetryDelay(msg string) time.Duration {
	m := retryDelayPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	d, err := time.ParseDuration(m[1])
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// parseRetryAfterHeader reads a retry hint from HTTP response headers:
// retry-after-ms (milliseconds) or Retry-After (seconds or HTTP-date).
// Returns zero if neither is present or parseable.
func parseRetryAfterHeader(h http.Header) time.Duration {
	if v := h.Get("retry-after-ms"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		if t, err := http.ParseTime(v); err == nil {
			if d := time.Until(t); d > 0 {
				return d
			}
		}
	}
	return 0
}

// quotaError builds a typed quota Error, folding a retry hint from the
// message when the explicit one is absent.
func quotaError(msg string, retryAfter time.Duration) *Error {
	if retryAfter == 0 {
		retryAfter = ParseRetryDelay(msg)
	}
	return &Error{Kind: KindQuota, Message: msg, RetryAfter: retryAfter}
}

// errorf builds a typed Error with a formatted message.
func errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
