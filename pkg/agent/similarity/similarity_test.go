package similarity

import "testing"

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{
			name: "identical strings",
			a:    "the quick brown fox",
			b:    "the quick brown fox",
			want: 1.0,
		},
		{
			name: "completely different",
			a:    "aaaa",
			b:    "bbbb",
			want: 0.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			want: 1.0,
		},
		{
			name: "one empty",
			a:    "abc",
			b:    "",
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioKnownValue(t *testing.T) {
	// "ab" and "de" match: M=4 of T=10 runes, so 2*M/T = 0.8
	got := Ratio("abcde", "abfde")
	want := 0.8
	if got != want {
		t.Errorf("Ratio = %v, want %v", got, want)
	}
}

func TestRatioSymmetryAndBounds(t *testing.T) {
	pairs := [][2]string{
		{"research summary about climate", "research summary about weather"},
		{"short", "a much longer unrelated body of text"},
		{"repeated repeated repeated", "repeated"},
	}

	for _, p := range pairs {
		ab := Ratio(p[0], p[1])
		ba := Ratio(p[1], p[0])
		if ab != ba {
			t.Errorf("Ratio not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Ratio out of bounds for %q/%q: %v", p[0], p[1], ab)
		}
	}
}

func TestSimilar(t *testing.T) {
	tests := []struct {
		name      string
		a         string
		b         string
		threshold float64
		want      bool
	}{
		{
			name:      "identical above threshold",
			a:         "same text",
			b:         "same text",
			threshold: 0.75,
			want:      true,
		},
		{
			name:      "near duplicate above threshold",
			a:         "The summary covers solar power trends in detail.",
			b:         "The summary covers solar power trends in detail!",
			threshold: 0.75,
			want:      true,
		},
		{
			name:      "different content below threshold",
			a:         "Solar power generation statistics",
			b:         "Recipe for banana bread",
			threshold: 0.75,
			want:      false,
		},
		{
			name:      "empty strings never similar",
			a:         "",
			b:         "",
			threshold: 0.75,
			want:      false,
		},
		{
			name:      "whitespace only never similar",
			a:         "   ",
			b:         "   ",
			threshold: 0.75,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similar(tt.a, tt.b, tt.threshold)
			if got != tt.want {
				t.Errorf("Similar(%q, %q, %v) = %v, want %v", tt.a, tt.b, tt.threshold, got, tt.want)
			}
		})
	}
}
