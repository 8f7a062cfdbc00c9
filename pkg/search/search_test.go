package search

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseHTMLResults(t *testing.T) {
	html := `
<table>
<tr><td><a class='result-link' href='https://example.com/solar'>Solar power guide</a></td></tr>
<tr><td class='result-snippet'>Everything about solar power generation.</td></tr>
<tr><td><a class='result-link' href='https://example.org/wind'>Wind &amp; solar trends</a></td></tr>
<tr><td class='result-snippet'>Current trends in renewables.</td></tr>
</table>`

	results := parseHTMLResults(html)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].Title != "Solar power guide" || results[0].URL != "https://example.com/solar" {
		t.Errorf("first result = %+v", results[0])
	}
	if results[0].Snippet != "Everything about solar power generation." {
		t.Errorf("first snippet = %q", results[0].Snippet)
	}
	if results[1].Title != "Wind & solar trends" {
		t.Errorf("entity not decoded: %q", results[1].Title)
	}
}

func TestParseHTMLResultsFallback(t *testing.T) {
	html := `
<a href='/internal'>Internal navigation</a>
<a href='https://duckduckgo.com/settings'>Settings</a>
<a href='https://example.com/page'>A real external page</a>`

	results := parseHTMLResults(html)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 from fallback", len(results))
	}
	if results[0].URL != "https://example.com/page" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		{Title: "First", URL: "https://a.example", Snippet: "one"},
		{Title: "Second", URL: "https://b.example", Snippet: "two"},
	}

	got := FormatResults(results)
	if !strings.Contains(got, "[1] First") || !strings.Contains(got, "[2] Second") {
		t.Errorf("FormatResults = %q", got)
	}
	if FormatResults(nil) != "" {
		t.Error("FormatResults(nil) should be empty")
	}
}

type countingProvider struct {
	calls   int
	results []Result
	err     error
}

func (p *countingProvider) Search(ctx context.Context, query string) ([]Result, error) {
	p.calls++
	return p.results, p.err
}

func TestCachedSearch(t *testing.T) {
	inner := &countingProvider{results: []Result{{Title: "hit", URL: "u", Snippet: "s"}}}
	c := NewCached(inner, 0)

	for i := 0; i < 3; i++ {
		results, err := c.Search(context.Background(), "same query")
		if err != nil {
			t.Fatalf("Search error = %v", err)
		}
		if len(results) != 1 || results[0].Title != "hit" {
			t.Fatalf("results = %+v", results)
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}

	if _, err := c.Search(context.Background(), "different query"); err != nil {
		t.Fatalf("Search error = %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
}

func TestCachedSearchDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	c := NewCached(inner, 0)

	for i := 0; i < 2; i++ {
		if _, err := c.Search(context.Background(), "q"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2 (errors not cached)", inner.calls)
	}
}
