package chunk

import (
	"errors"
	"strings"
	"testing"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		perChunk   int
		want       []PageRange
	}{
		{
			name:       "single page single chunk",
			totalPages: 1,
			perChunk:   1,
			want:       []PageRange{{1, 1}},
		},
		{
			name:       "exact multiple",
			totalPages: 9,
			perChunk:   3,
			want:       []PageRange{{1, 3}, {4, 6}, {7, 9}},
		},
		{
			name:       "short final range",
			totalPages: 10,
			perChunk:   3,
			want:       []PageRange{{1, 3}, {4, 6}, {7, 9}, {10, 10}},
		},
		{
			name:       "chunk larger than document",
			totalPages: 5,
			perChunk:   20,
			want:       []PageRange{{1, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Partition(tt.totalPages, tt.perChunk)
			if err != nil {
				t.Fatalf("Partition(%d, %d): %v", tt.totalPages, tt.perChunk, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d ranges, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPartitionCoversDocument(t *testing.T) {
	// The union of ranges must reconstruct [1, totalPages] with no gaps or
	// overlaps, and the count must equal ceil(total/perChunk).
	for totalPages := 1; totalPages <= 50; totalPages++ {
		for perChunk := 1; perChunk <= 12; perChunk++ {
			ranges, err := Partition(totalPages, perChunk)
			if err != nil {
				t.Fatalf("Partition(%d, %d): %v", totalPages, perChunk, err)
			}

			wantCount := (totalPages + perChunk - 1) / perChunk
			if len(ranges) != wantCount {
				t.Fatalf("Partition(%d, %d): got %d ranges, want %d", totalPages, perChunk, len(ranges), wantCount)
			}

			cursor := 1
			for _, r := range ranges {
				if r.Start != cursor {
					t.Fatalf("Partition(%d, %d): range %v starts at %d, want %d", totalPages, perChunk, r, r.Start, cursor)
				}
				if r.End < r.Start {
					t.Fatalf("Partition(%d, %d): inverted range %v", totalPages, perChunk, r)
				}
				if r.Pages() > perChunk {
					t.Fatalf("Partition(%d, %d): range %v exceeds %d pages", totalPages, perChunk, r, perChunk)
				}
				cursor = r.End + 1
			}
			if cursor != totalPages+1 {
				t.Fatalf("Partition(%d, %d): ranges end at %d, want %d", totalPages, perChunk, cursor-1, totalPages)
			}
		}
	}
}

func TestPartitionInvalidArguments(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		perChunk   int
	}{
		{"zero pages", 0, 10},
		{"negative pages", -3, 10},
		{"zero per chunk", 10, 0},
		{"negative per chunk", 10, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Partition(tt.totalPages, tt.perChunk); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Partition(%d, %d): got %v, want ErrInvalidArgument", tt.totalPages, tt.perChunk, err)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	r, err := ValidateRange(3, 7, 10)
	if err != nil {
		t.Fatalf("ValidateRange(3, 7, 10): %v", err)
	}
	if r != (PageRange{Start: 3, End: 7}) {
		t.Errorf("got %v, want {3 7}", r)
	}

	tests := []struct {
		name             string
		start, end, total int
		wantInMessage    string
	}{
		{"end beyond total", 10, 20, 15, "end page 20 exceeds total 15 pages"},
		{"start before first page", 0, 5, 10, "start page 0"},
		{"inverted range", 8, 3, 10, "start page 8 is after end page 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRange(tt.start, tt.end, tt.total)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("got %v, want ErrOutOfRange", err)
			}
			if !strings.Contains(err.Error(), tt.wantInMessage) {
				t.Errorf("error %q does not name the offending bound %q", err.Error(), tt.wantInMessage)
			}
		})
	}
}
