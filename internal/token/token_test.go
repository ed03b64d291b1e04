package token

import (
	"errors"
	"testing"
)

func TestEstimatorCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"hello world, this is text", 7},
	}

	var e Estimator
	for _, tt := range tests {
		got, err := e.Count(tt.text)
		if err != nil {
			t.Fatalf("Count(%q): %v", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestEstimatorMonotonic(t *testing.T) {
	var e Estimator
	short, _ := e.Count("hello")
	long, _ := e.Count("hello hello hello hello hello hello hello hello")
	if long <= short {
		t.Errorf("longer text should count more tokens: short=%d long=%d", short, long)
	}
}

type failingCounter struct{ err error }

func (f failingCounter) Count(string) (int, error) { return 0, f.err }

func TestFallback(t *testing.T) {
	boom := errors.New("boom")

	t.Run("primary succeeds", func(t *testing.T) {
		f := Fallback{Primary: Estimator{}, Secondary: failingCounter{boom}}
		got, err := f.Count("abcdefgh")
		if err != nil || got != 2 {
			t.Errorf("got %d, %v; want 2, nil", got, err)
		}
	})

	t.Run("primary fails, secondary serves", func(t *testing.T) {
		f := Fallback{Primary: failingCounter{boom}, Secondary: Estimator{}}
		got, err := f.Count("abcdefgh")
		if err != nil || got != 2 {
			t.Errorf("got %d, %v; want 2, nil", got, err)
		}
	})

	t.Run("both fail surfaces primary error", func(t *testing.T) {
		f := Fallback{Primary: failingCounter{boom}, Secondary: failingCounter{errors.New("other")}}
		if _, err := f.Count("x"); !errors.Is(err, boom) {
			t.Errorf("got %v, want primary error", err)
		}
	})

	t.Run("no secondary", func(t *testing.T) {
		f := Fallback{Primary: failingCounter{boom}}
		if _, err := f.Count("x"); !errors.Is(err, boom) {
			t.Errorf("got %v, want primary error", err)
		}
	})
}

func TestTiktokenNotLoaded(t *testing.T) {
	var tk *Tiktoken
	if _, err := tk.Count("text"); !errors.Is(err, ErrTokenization) {
		t.Errorf("nil Tiktoken: got %v, want ErrTokenization", err)
	}
}
