// Package search provides the web-search capability for the research pipeline.
//
// Available providers:
//
//   - Tavily: requires an API key, supports basic/advanced depth modes
//   - DuckDuckGo: free, no API key (scrapes the lite HTML interface)
//
// A nil provider means the capability is unconfigured; callers fall back to
// generation instead of failing.
package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is a single search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is the search capability contract.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// FormatResults renders hits into the plain-text block consumed by the
// summarizer.
func FormatResults(results []Result) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("[%d] %s\n%s\n%s", i+1, r.Title, r.URL, r.Snippet))
	}
	return sb.String()
}
