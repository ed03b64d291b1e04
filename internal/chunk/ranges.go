// Package chunk implements page-range partitioning and token-aware text
// chunking for PDF processing.
//
// Both algorithms are pure: they operate only on their inputs, never block,
// and may be called concurrently without coordination. Token counts are
// supplied by the caller (see internal/token), keeping this package free of
// tokenizer dependencies.
package chunk

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a malformed numeric input (non-positive count or budget).
var ErrInvalidArgument = errors.New("invalid argument")

// ErrOutOfRange reports page indices outside [1, totalPages].
var ErrOutOfRange = errors.New("page range out of bounds")

// PageRange is an inclusive, 1-based interval of document page indices.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Pages returns the number of pages covered by the range.
func (r PageRange) Pages() int {
	return r.End - r.Start + 1
}

// String renders the range as "start-end".
func (r PageRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Partition splits [1, totalPages] into contiguous ranges of at most
// maxPagesPerChunk pages each. Ranges are ordered, non-overlapping, and their
// union reconstructs the full interval; the final range may be shorter.
func Partition(totalPages, maxPagesPerChunk int) ([]PageRange, error) {
	if totalPages <= 0 {
		return nil, fmt.Errorf("%w: total pages must be positive, got %d", ErrInvalidArgument, totalPages)
	}
	if maxPagesPerChunk <= 0 {
		return nil, fmt.Errorf("%w: pages per chunk must be positive, got %d", ErrInvalidArgument, maxPagesPerChunk)
	}

	ranges := make([]PageRange, 0, (totalPages+maxPagesPerChunk-1)/maxPagesPerChunk)
	for start := 1; start <= totalPages; start += maxPagesPerChunk {
		end := start + maxPagesPerChunk - 1
		if end > totalPages {
			end = totalPages
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
	}
	return ranges, nil
}

// ValidateRange checks an explicitly requested page range against the
// document's page count and returns it as a PageRange. The error message
// names the offending bound.
func ValidateRange(start, end, totalPages int) (PageRange, error) {
	if start < 1 {
		return PageRange{}, fmt.Errorf("%w: start page %d is before page 1", ErrOutOfRange, start)
	}
	if end > totalPages {
		return PageRange{}, fmt.Errorf("%w: end page %d exceeds total %d pages", ErrOutOfRange, end, totalPages)
	}
	if start > end {
		return PageRange{}, fmt.Errorf("%w: start page %d is after end page %d", ErrOutOfRange, start, end)
	}
	return PageRange{Start: start, End: end}, nil
}
