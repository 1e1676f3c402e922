package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/sportwire/app/sources"
)

const fetcherTestFeed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Item One</title>
      <link>https://example.com/one</link>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Item Two</title>
      <link>https://example.com/two</link>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

type captureSink struct {
	mu       sync.Mutex
	articles []Article
	stale    int
	err      error
}

func (s *captureSink) AppendArticles(articles []Article) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, 0, s.err
	}
	s.articles = append(s.articles, articles...)
	return len(articles), s.stale, nil
}

func newTestFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher(&http.Client{}, NewParser(), nil, "test-agent", 20, 3, timeout)
}

func TestFetcher_Run_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(fetcherTestFeed))
	}))
	defer server.Close()

	fetcher := newTestFetcher(5 * time.Second)
	sink := &captureSink{}

	results := fetcher.Run(context.Background(), []sources.Source{
		{Name: "Test", URL: server.URL},
	}, sink)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Status != StatusSuccess {
		t.Errorf("Expected status success, got %s (error: %s)", results[0].Status, results[0].Error)
	}
	if results[0].ItemsParsed != 2 {
		t.Errorf("Expected 2 parsed items, got %d", results[0].ItemsParsed)
	}
	if results[0].ItemsNew != 2 {
		t.Errorf("Expected 2 new items, got %d", results[0].ItemsNew)
	}
	if len(sink.articles) != 2 {
		t.Errorf("Expected 2 articles in sink, got %d", len(sink.articles))
	}
}

func TestFetcher_Run_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := newTestFetcher(5 * time.Second)
	results := fetcher.Run(context.Background(), []sources.Source{
		{Name: "Broken", URL: server.URL},
	}, &captureSink{})

	if results[0].Status != StatusHTTPError {
		t.Errorf("Expected status http_error, got %s", results[0].Status)
	}
	if results[0].Error == "" {
		t.Error("Expected error text to be recorded")
	}
}

func TestFetcher_Run_NoFeedFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not a feed</body></html>"))
	}))
	defer server.Close()

	fetcher := newTestFetcher(5 * time.Second)
	results := fetcher.Run(context.Background(), []sources.Source{
		{Name: "NotAFeed", URL: server.URL},
	}, &captureSink{})

	if results[0].Status != StatusNoFeed {
		t.Errorf("Expected status no_feed_found, got %s", results[0].Status)
	}
}

func TestFetcher_Run_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(fetcherTestFeed))
	}))
	defer server.Close()

	fetcher := newTestFetcher(50 * time.Millisecond)
	results := fetcher.Run(context.Background(), []sources.Source{
		{Name: "Slow", URL: server.URL},
	}, &captureSink{})

	if results[0].Status != StatusTimeout {
		t.Errorf("Expected status timeout, got %s", results[0].Status)
	}
}

func TestFetcher_Run_OneFailureDoesNotStallBatch(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fetcherTestFeed))
	}))
	defer okServer.Close()

	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer badServer.Close()

	fetcher := newTestFetcher(5 * time.Second)
	sink := &captureSink{}
	results := fetcher.Run(context.Background(), []sources.Source{
		{Name: "Good", URL: okServer.URL},
		{Name: "Bad", URL: badServer.URL},
		{Name: "Unreachable", URL: "http://127.0.0.1:1/feed"},
	}, sink)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Status != StatusSuccess {
		t.Errorf("Expected first source to succeed, got %s", results[0].Status)
	}
	if results[1].Status != StatusHTTPError {
		t.Errorf("Expected second source http_error, got %s", results[1].Status)
	}
	if results[2].Status == StatusSuccess {
		t.Error("Expected third source to fail")
	}
	if len(sink.articles) != 2 {
		t.Errorf("Expected articles only from the good source, got %d", len(sink.articles))
	}
}

func TestFetcher_Run_PerHostConcurrencyBound(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()

		w.Write([]byte(fetcherTestFeed))
	}))
	defer server.Close()

	fetcher := NewFetcher(&http.Client{}, NewParser(), nil, "test-agent", 20, 2, 5*time.Second)

	var srcs []sources.Source
	for i := 0; i < 8; i++ {
		srcs = append(srcs, sources.Source{Name: "S", URL: server.URL + "/feed"})
	}

	fetcher.Run(context.Background(), srcs, &captureSink{})

	if maxInFlight > 2 {
		t.Errorf("Expected at most 2 concurrent requests per host, saw %d", maxInFlight)
	}
}

func TestFetcher_Run_SinkFailureIsolated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fetcherTestFeed))
	}))
	defer server.Close()

	fetcher := newTestFetcher(5 * time.Second)
	sink := &captureSink{err: context.Canceled}
	results := fetcher.Run(context.Background(), []sources.Source{
		{Name: "Test", URL: server.URL},
	}, sink)

	if results[0].Status != StatusException {
		t.Errorf("Expected status exception on sink failure, got %s", results[0].Status)
	}
}
