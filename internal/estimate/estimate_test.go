package estimate

import (
	"errors"
	"testing"

	"github.com/splitfire/splitfire/internal/chunk"
)

func TestComputeBounds(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		pages    int
		size     int64
		density  float64
		wantTier Tier
	}{
		{"sparse short document", 20, 20 * 16 * 1024, 400, TierLow},
		{"dense text", 50, 50 * 16 * 1024, 5000, TierHigh},
		{"graphics heavy", 50, 50 * 512 * 1024, 400, TierHigh},
		{"long but light document", 300, 300 * 16 * 1024, 400, TierMedium},
		{"middling everything", 50, 50 * 128 * 1024, 2000, TierMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.pages, tt.size, tt.density, th)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if got.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s (estimate %+v)", got.Tier, tt.wantTier, got)
			}
			if got.RecommendedPagesPerChunk < th.MinPagesPerChunk || got.RecommendedPagesPerChunk > th.MaxPagesPerChunk {
				t.Errorf("recommendation %d outside [%d, %d]", got.RecommendedPagesPerChunk, th.MinPagesPerChunk, th.MaxPagesPerChunk)
			}
			if got.Rationale == "" {
				t.Error("rationale is empty")
			}
		})
	}
}

func TestComputeMonotonic(t *testing.T) {
	th := DefaultThresholds()
	const pages = 100

	t.Run("recommendation non-increasing in bytes per page", func(t *testing.T) {
		prev := th.MaxPagesPerChunk + 1
		for _, perPage := range []int64{8 << 10, 32 << 10, 64 << 10, 128 << 10, 256 << 10, 1 << 20} {
			e, err := Compute(pages, int64(pages)*perPage, 1000, th)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if e.RecommendedPagesPerChunk > prev {
				t.Errorf("recommendation rose from %d to %d at %d bytes/page", prev, e.RecommendedPagesPerChunk, perPage)
			}
			prev = e.RecommendedPagesPerChunk
		}
	})

	t.Run("recommendation non-increasing in text density", func(t *testing.T) {
		prev := th.MaxPagesPerChunk + 1
		for _, density := range []float64{0, 500, 1000, 2000, 3000, 4000, 8000} {
			e, err := Compute(pages, int64(pages)*16*1024, density, th)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if e.RecommendedPagesPerChunk > prev {
				t.Errorf("recommendation rose from %d to %d at density %g", prev, e.RecommendedPagesPerChunk, density)
			}
			prev = e.RecommendedPagesPerChunk
		}
	})
}

func TestComputeInvalidArguments(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name    string
		pages   int
		size    int64
		density float64
	}{
		{"zero pages", 0, 1024, 100},
		{"negative pages", -1, 1024, 100},
		{"negative size", 10, -1, 100},
		{"negative density", 10, 1024, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compute(tt.pages, tt.size, tt.density, th); !errors.Is(err, chunk.ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestChunkCounts(t *testing.T) {
	counts := ChunkCounts(101, 5, 10, 20, 50)
	want := map[string]int{"5_pages": 21, "10_pages": 11, "20_pages": 6, "50_pages": 3}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("%s = %d, want %d", k, counts[k], v)
		}
	}
	if got := ChunkCounts(10, 0, -3); len(got) != 0 {
		t.Errorf("non-positive sizes should be skipped, got %v", got)
	}
}
