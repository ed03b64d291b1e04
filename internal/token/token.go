// Package token provides the token-counting capability used by the chunker.
//
// The primary implementation wraps tiktoken with a fixed encoding so counts
// are reproducible across runs. A cheap character heuristic serves as the
// fallback when encoding fails and as a dependency-free counter in tests.
package token

import (
	"errors"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the fixed BPE encoding used for all counts.
const DefaultEncoding = "cl100k_base"

// ErrTokenization reports a tokenizer failure. Non-retryable: identical
// input fails identically.
var ErrTokenization = errors.New("tokenization failed")

// Counter maps a text string to its token count.
type Counter interface {
	Count(text string) (int, error)
}

// Tiktoken counts tokens with a tiktoken BPE encoding.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTiktoken loads the named encoding, or DefaultEncoding when name is empty.
func NewTiktoken(name string) (*Tiktoken, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: loading encoding %s: %v", ErrTokenization, name, err)
	}
	return &Tiktoken{encoding: enc, name: name}, nil
}

// Count returns the number of BPE tokens in text.
func (t *Tiktoken) Count(text string) (int, error) {
	if t == nil || t.encoding == nil {
		return 0, fmt.Errorf("%w: encoding not loaded", ErrTokenization)
	}
	return len(t.encoding.Encode(text, nil, nil)), nil
}

// Encoding returns the encoding name counts are computed with.
func (t *Tiktoken) Encoding() string {
	return t.name
}

// Estimator approximates token counts at ~4 characters per token. Useful
// where a rough number is enough and loading a BPE vocabulary is not.
type Estimator struct{}

// Count never fails; empty text counts as zero.
func (Estimator) Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return (len(text) + 3) / 4, nil
}

// Fallback tries the primary counter and falls back to the secondary when it
// errors. Both failing surfaces the primary's error.
type Fallback struct {
	Primary   Counter
	Secondary Counter
}

func (f Fallback) Count(text string) (int, error) {
	n, err := f.Primary.Count(text)
	if err == nil {
		return n, nil
	}
	if f.Secondary == nil {
		return 0, err
	}
	if m, serr := f.Secondary.Count(text); serr == nil {
		return m, nil
	}
	return 0, err
}
