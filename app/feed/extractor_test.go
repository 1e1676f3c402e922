package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExtractor_NeedsEnrichment(t *testing.T) {
	extractor := NewExtractor(&http.Client{}, "test-agent", time.Second)

	thin := Article{Link: "https://example.com/a", Summary: "short"}
	if !extractor.NeedsEnrichment(thin) {
		t.Error("Expected thin summary to need enrichment")
	}

	rich := Article{Link: "https://example.com/a", Summary: strings.Repeat("long summary text ", 10)}
	if extractor.NeedsEnrichment(rich) {
		t.Error("Expected rich summary to not need enrichment")
	}

	noLink := Article{Summary: ""}
	if extractor.NeedsEnrichment(noLink) {
		t.Error("Expected article without link to not need enrichment")
	}
}

func TestExtractor_Run(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Match Report</title></head>
<body>
  <article>
    <h1>Match Report</h1>
    <p>The home side dominated from the first whistle and deserved the three points.
    A commanding midfield display kept the visitors pinned back for long spells, and
    the opening goal arrived after twenty minutes of sustained pressure.</p>
    <p>The second half followed the same pattern, with the visitors offering little
    going forward and the hosts adding a second from the penalty spot.</p>
  </article>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	defer server.Close()

	extractor := NewExtractor(&http.Client{}, "test-agent", 5*time.Second)
	text, err := extractor.Run(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(text, "dominated from the first whistle") {
		t.Errorf("Expected extracted text to contain article body, got: %s", text)
	}
	if strings.Contains(text, "<p>") {
		t.Error("Expected extracted text without HTML markup")
	}
}

func TestExtractor_Run_NonHTMLContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	extractor := NewExtractor(&http.Client{}, "test-agent", 5*time.Second)
	if _, err := extractor.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected error for non-HTML content type")
	}
}

func TestExtractor_Run_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	extractor := NewExtractor(&http.Client{}, "test-agent", 5*time.Second)
	if _, err := extractor.Run(context.Background(), server.URL); err == nil {
		t.Error("Expected error for HTTP failure")
	}
}
