package chunk

import "fmt"

// TextBlock is one unit of extracted text, typically a single page. Tokens is
// computed once by the caller and cached here for the chunker's lifetime.
type TextBlock struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Tokens int    `json:"tokens"`
}

// Chunk is a contiguous group of text blocks whose combined token count is
// bounded by the caller's budget. Oversized marks the overflow-escape case:
// a single block that alone exceeds the budget, emitted on its own.
type Chunk struct {
	Blocks      []TextBlock `json:"blocks"`
	TotalTokens int         `json:"total_tokens"`
	Oversized   bool        `json:"oversized,omitempty"`
}

// Split groups consecutive blocks into chunks of at most maxTokens combined
// tokens, in a single greedy forward pass. No backtracking or rebalancing:
// a chunk closes as soon as the next block would overflow it. Simplicity
// wins over bin-packing optimality here.
//
// Invariants: chunk order matches block order, every block lands in exactly
// one chunk, no chunk is empty, and only an Oversized chunk exceeds the
// budget. An empty block slice yields an empty result.
func Split(blocks []TextBlock, maxTokens int) ([]Chunk, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: token budget must be positive, got %d", ErrInvalidArgument, maxTokens)
	}

	var chunks []Chunk
	var acc Chunk

	flush := func() {
		if len(acc.Blocks) > 0 {
			chunks = append(chunks, acc)
			acc = Chunk{}
		}
	}

	for _, b := range blocks {
		// A block too large to share a chunk with anything gets emitted
		// alone, flagged, and the accumulator starts fresh.
		if b.Tokens > maxTokens {
			flush()
			chunks = append(chunks, Chunk{
				Blocks:      []TextBlock{b},
				TotalTokens: b.Tokens,
				Oversized:   true,
			})
			continue
		}

		if acc.TotalTokens+b.Tokens > maxTokens {
			flush()
		}
		acc.Blocks = append(acc.Blocks, b)
		acc.TotalTokens += b.Tokens
	}
	flush()

	return chunks, nil
}

// PageSpan returns the inclusive 1-based page interval covered by the chunk,
// assuming block indices are 0-based page indices.
func (c Chunk) PageSpan() PageRange {
	if len(c.Blocks) == 0 {
		return PageRange{}
	}
	return PageRange{
		Start: c.Blocks[0].Index + 1,
		End:   c.Blocks[len(c.Blocks)-1].Index + 1,
	}
}
