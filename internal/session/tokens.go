package session

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenEstimator approximates the size, in model tokens, of a block of
// text. SPEC_FULL §4.14: this feeds only the informational EstimatedTokens
// field of model_request_start events and never changes the compression
// trigger from spec.md §4.3.
type TokenEstimator struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewTokenEstimator returns an estimator backed by the cl100k_base
// encoding used by the chat-completion model family.
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{}
}

func (t *TokenEstimator) encoding() *tiktoken.Tiktoken {
	t.once.Do(func() {
		t.enc, t.err = tiktoken.GetEncoding("cl100k_base")
	})
	return t.enc
}

// Estimate returns the approximate token count of text. If the tiktoken
// encoding tables cannot be loaded (e.g. offline with no cached BPE file),
// it falls back to a whitespace-token heuristic rather than failing —
// this estimate is advisory, never fatal (SPEC_FULL §4.14).
func (t *TokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	if enc := t.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}

// EstimateMessages sums Estimate across every message's content plus a
// small fixed per-message overhead, mirroring how chat APIs bill role/
// framing tokens.
func (t *TokenEstimator) EstimateMessages(messages []Message) int {
	const perMessageOverhead = 4
	total := 0
	for _, m := range messages {
		total += perMessageOverhead + t.Estimate(m.Content)
	}
	return total
}
