package provider

import (
	"math"
	"sort"
	"strings"
)

// labelPrefixes are chatty lead-ins models sometimes prepend despite the
// prompt asking for the continuation only.
var labelPrefixes = []string{
	"Continuation:",
	"Continue:",
	"Here is the continuation:",
	"Suggested continuation:",
}

// cleanCandidateText strips markdown fences, wrapping quotes and label
// prefixes from a model reply, leaving plain prose.
func cleanCandidateText(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop an opening fence language tag.
		if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.ContainsAny(s[:idx], " \t") {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	for _, prefix := range labelPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

// candidateScore converts model confidence into a 0..1 score, falling back
// to rank decay when the API reported no logprobs.
func candidateScore(avgLogprobs float64, index int) float64 {
	if avgLogprobs < 0 {
		if p := math.Exp(avgLogprobs); p > 0 && p <= 1 {
			return p
		}
	}
	return math.Max(0.1, 1.0-float64(index)*0.1)
}

// candidateSources extracts the web evidence attached to a candidate.
func candidateSources(c geminiCandidate) []Source {
	if c.GroundingMetadata == nil {
		return nil
	}
	var sources []Source
	for _, chunk := range c.GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, Source{Title: chunk.Web.Title, URL: chunk.Web.URI})
	}
	return sources
}

// parseSuggestions converts a generateContent response into ordered
// suggestions. An empty candidate list is a successful empty result; when
// search grounding was requested, candidates without any source are a
// no-evidence rejection.
func parseSuggestions(resp *geminiResponse, max int, requireSources bool) ([]Suggestion, error) {
	suggestions := make([]Suggestion, 0, len(resp.Candidates))
	seen := make(map[string]bool)

	for i, c := range resp.Candidates {
		text := cleanCandidateText(candidateText(c))
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		suggestions = append(suggestions, Suggestion{
			Text:    text,
			Sources: candidateSources(c),
			Score:   candidateScore(c.AvgLogprobs, i),
		})
	}

	if requireSources && len(suggestions) > 0 {
		grounded := suggestions[:0]
		for _, s := range suggestions {
			if len(s.Sources) > 0 {
				grounded = append(grounded, s)
			}
		}
		if len(grounded) == 0 {
			return nil, errorf(KindNoEvidence, "no relevant sources found for this context")
		}
		suggestions = grounded
	}

	sort.SliceStable(suggestions, func(a, b int) bool {
		return suggestions[a].Score > suggestions[b].Score
	})
	if len(suggestions) > max {
		suggestions = suggestions[:max]
	}
	return suggestions, nil
}

// candidateText joins the text parts of one candidate.
func candidateText(c geminiCandidate) string {
	if c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// firstCandidateText returns the raw text of the best candidate, empty when
// the response carries none.
func firstCandidateText(resp *geminiResponse) string {
	for _, c := range resp.Candidates {
		if t := candidateText(c); strings.TrimSpace(t) != "" {
			return t
		}
	}
	return ""
}
