package store

import "testing"

func TestIsLowInformation(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		minChars int
		want     bool
	}{
		{
			name:     "empty",
			content:  "",
			minChars: 100,
			want:     true,
		},
		{
			name:     "short content",
			content:  "too short",
			minChars: 100,
			want:     true,
		},
		{
			name:     "research error prefix",
			content:  "Research error for 'x': timeout" + pad(100),
			minChars: 100,
			want:     true,
		},
		{
			name:     "minimal information prefix",
			content:  "Minimal information for 'x'." + pad(100),
			minChars: 100,
			want:     true,
		},
		{
			name:     "healthy content",
			content:  pad(150),
			minChars: 100,
			want:     false,
		},
		{
			name:     "whitespace padding does not rescue short content",
			content:  "   x   " + "\n\n\n",
			minChars: 100,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLowInformation(tt.content, tt.minChars); got != tt.want {
				t.Errorf("IsLowInformation(%q, %d) = %v, want %v", tt.content, tt.minChars, got, tt.want)
			}
		})
	}
}

func pad(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("Truncate long = %q", got)
	}
	if got := Truncate("", 5); got != "" {
		t.Errorf("Truncate empty = %q", got)
	}
	// Multi-byte runes are counted as characters and never split
	if got := Truncate("héllo wörld", 5); got != "héllo" {
		t.Errorf("Truncate multibyte = %q", got)
	}
	if got := Truncate("日本語テキスト", 3); got != "日本語" {
		t.Errorf("Truncate wide = %q", got)
	}
}

func TestReplaceSummary(t *testing.T) {
	s := NewResearchSession("s1", "q")
	s.ReplaceSummary("first")
	if s.Summary != "first" || s.PreviousSummary != "" {
		t.Errorf("after first replace: %+v", s)
	}
	s.ReplaceSummary("second")
	if s.Summary != "second" || s.PreviousSummary != "first" {
		t.Errorf("after second replace: %+v", s)
	}
}

func TestRecordStrategy(t *testing.T) {
	s := NewResearchSession("s1", "q")
	s.RecordStrategy("a")
	s.RecordStrategy("b")
	s.RecordStrategy("a") // duplicate ignored
	if len(s.TriedStrategies) != 2 {
		t.Fatalf("TriedStrategies = %v", s.TriedStrategies)
	}
	if !s.HasTriedStrategy("a") || !s.HasTriedStrategy("b") || s.HasTriedStrategy("c") {
		t.Error("HasTriedStrategy mismatch")
	}
}
