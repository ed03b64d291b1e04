// Package estimate recommends a pages-per-chunk value and a processing
// complexity tier from cheap document metrics: page count, file size, and
// sampled text density.
//
// The thresholds are a tunable policy table passed in explicitly, never read
// from ambient state; Estimate itself is a pure function. The only guarantee
// callers may rely on is monotonicity: the recommendation never increases as
// bytes-per-page or text density rises.
package estimate

import (
	"fmt"

	"github.com/splitfire/splitfire/internal/chunk"
)

// Tier classifies the expected processing effort for a document.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Thresholds is the policy table the estimator interpolates over.
type Thresholds struct {
	// MinPagesPerChunk / MaxPagesPerChunk clamp the recommendation.
	MinPagesPerChunk int `yaml:"min_pages_per_chunk"`
	MaxPagesPerChunk int `yaml:"max_pages_per_chunk"`

	// HeavyBytesPerPage marks the bytes-per-page level above which a page is
	// considered graphics-heavy; LightBytesPerPage the level below which it
	// is considered sparse.
	HeavyBytesPerPage int64 `yaml:"heavy_bytes_per_page"`
	LightBytesPerPage int64 `yaml:"light_bytes_per_page"`

	// DenseCharsPerPage / SparseCharsPerPage bound the text-density signal.
	DenseCharsPerPage  float64 `yaml:"dense_chars_per_page"`
	SparseCharsPerPage float64 `yaml:"sparse_chars_per_page"`

	// ManyPages marks the page count above which tier is at least medium.
	ManyPages int `yaml:"many_pages"`
}

// DefaultThresholds mirrors the 50MB-file / 200-page policy the recommender
// shipped with: 10..25 page recommendations, heavy pages at ~250KB.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPagesPerChunk:   10,
		MaxPagesPerChunk:   25,
		HeavyBytesPerPage:  256 * 1024,
		LightBytesPerPage:  32 * 1024,
		DenseCharsPerPage:  3500,
		SparseCharsPerPage: 800,
		ManyPages:          200,
	}
}

// Estimate is the recommendation produced for one document.
type Estimate struct {
	RecommendedPagesPerChunk int    `json:"recommended_pages_per_chunk"`
	Tier                     Tier   `json:"complexity_tier"`
	Rationale                string `json:"rationale"`
}

// Compute recommends a pages-per-chunk value and complexity tier.
// avgTextDensity is average extracted characters per page (>= 0). Fails with
// chunk.ErrInvalidArgument when totalPages is not positive; negative sizes
// and densities are rejected the same way.
func Compute(totalPages int, fileSizeBytes int64, avgTextDensity float64, th Thresholds) (Estimate, error) {
	if totalPages <= 0 {
		return Estimate{}, fmt.Errorf("%w: total pages must be positive, got %d", chunk.ErrInvalidArgument, totalPages)
	}
	if fileSizeBytes < 0 {
		return Estimate{}, fmt.Errorf("%w: file size must be non-negative, got %d", chunk.ErrInvalidArgument, fileSizeBytes)
	}
	if avgTextDensity < 0 {
		return Estimate{}, fmt.Errorf("%w: text density must be non-negative, got %g", chunk.ErrInvalidArgument, avgTextDensity)
	}

	bytesPerPage := fileSizeBytes / int64(totalPages)

	// Each signal scores 0 (light) to 1 (heavy), linearly between its bounds.
	sizeScore := ratio(float64(bytesPerPage), float64(th.LightBytesPerPage), float64(th.HeavyBytesPerPage))
	densityScore := ratio(avgTextDensity, th.SparseCharsPerPage, th.DenseCharsPerPage)

	// The heavier signal drives the recommendation down toward the lower
	// bound; both signals low push it toward the upper bound.
	load := sizeScore
	if densityScore > load {
		load = densityScore
	}

	span := th.MaxPagesPerChunk - th.MinPagesPerChunk
	recommended := th.MaxPagesPerChunk - int(load*float64(span)+0.5)
	if recommended < th.MinPagesPerChunk {
		recommended = th.MinPagesPerChunk
	}
	if recommended > th.MaxPagesPerChunk {
		recommended = th.MaxPagesPerChunk
	}

	tier, why := classify(totalPages, load, th)
	return Estimate{
		RecommendedPagesPerChunk: recommended,
		Tier:                     tier,
		Rationale:                why,
	}, nil
}

// ChunkCounts returns the number of chunks a document would split into at
// each of the given pages-per-chunk settings, keyed "<n>_pages".
func ChunkCounts(totalPages int, sizes ...int) map[string]int {
	counts := make(map[string]int, len(sizes))
	for _, size := range sizes {
		if size <= 0 {
			continue
		}
		counts[fmt.Sprintf("%d_pages", size)] = (totalPages + size - 1) / size
	}
	return counts
}

func classify(totalPages int, load float64, th Thresholds) (Tier, string) {
	switch {
	case load >= 0.75:
		return TierHigh, "pages are heavy: large per-page size or dense text"
	case load >= 0.35:
		return TierMedium, "moderate per-page size and text density"
	case totalPages > th.ManyPages:
		return TierMedium, fmt.Sprintf("light pages but a long document (%d pages)", totalPages)
	default:
		return TierLow, "light pages and a short document"
	}
}

// ratio maps v linearly onto [0, 1] between lo and hi, clamping outside.
func ratio(v, lo, hi float64) float64 {
	if hi <= lo {
		if v >= hi {
			return 1
		}
		return 0
	}
	switch {
	case v <= lo:
		return 0
	case v >= hi:
		return 1
	default:
		return (v - lo) / (hi - lo)
	}
}
