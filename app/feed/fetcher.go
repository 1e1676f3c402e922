package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/sportwire/app/sources"
)

// Fetcher retrieves all registered feeds concurrently. Concurrency is
// bounded globally and per host; each request carries its own timeout.
// A source failure is recorded in its SourceResult and never fails the
// batch.
type Fetcher struct {
	httpClient     *http.Client
	parser         *Parser
	extractor      *Extractor
	userAgent      string
	concurrency    int
	perHost        int
	requestTimeout time.Duration

	mu        sync.Mutex
	hostSlots map[string]chan struct{}
}

func NewFetcher(httpClient *http.Client, parser *Parser, extractor *Extractor,
	userAgent string, concurrency, perHost int, requestTimeout time.Duration) *Fetcher {
	if concurrency <= 0 {
		concurrency = 20
	}
	if perHost <= 0 {
		perHost = 3
	}

	return &Fetcher{
		httpClient:     httpClient,
		parser:         parser,
		extractor:      extractor,
		userAgent:      userAgent,
		concurrency:    concurrency,
		perHost:        perHost,
		requestTimeout: requestTimeout,
		hostSlots:      make(map[string]chan struct{}),
	}
}

// Run fetches every source and appends the surviving articles to the
// sink. The batch always waits for every source to finish; the
// returned results preserve source order.
func (f *Fetcher) Run(ctx context.Context, srcs []sources.Source, sink Sink) []SourceResult {
	results := make([]SourceResult, len(srcs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.concurrency)

	for i, source := range srcs {
		group.Go(func() error {
			results[i] = f.fetchSource(groupCtx, source, sink)
			return nil
		})
	}

	// Workers never return errors; per-source failures live in the
	// result entries.
	_ = group.Wait()

	return results
}

func (f *Fetcher) fetchSource(ctx context.Context, source sources.Source, sink Sink) SourceResult {
	result := SourceResult{Source: source, Status: StatusSuccess}
	startTime := time.Now()
	defer func() {
		result.Duration = time.Since(startTime)
	}()

	release := f.acquireHostSlot(source.URL)
	defer release()

	data, err := f.fetchFeed(ctx, source.URL)
	if err != nil {
		result.Status, result.Error = classifyFetchError(err)
		slog.Warn("Feed fetch failed", "source", source.Name, "status", string(result.Status), "error", result.Error)
		return result
	}

	articles, err := f.parser.Run(data, source)
	if err != nil {
		result.Status = StatusNoFeed
		result.Error = err.Error()
		slog.Warn("Feed parse failed", "source", source.Name, "error", result.Error)
		return result
	}
	result.ItemsParsed = len(articles)

	if f.extractor != nil {
		f.enrichSummaries(ctx, articles)
	}

	stored, stale, err := sink.AppendArticles(articles)
	if err != nil {
		result.Status = StatusException
		result.Error = fmt.Sprintf("failed to store articles: %s", err)
		slog.Warn("Article store failed", "source", source.Name, "error", result.Error)
		return result
	}
	result.ItemsNew = stored
	result.ItemsStale = stale

	slog.Debug("Source fetched",
		"source", source.Name,
		"parsed", result.ItemsParsed,
		"new", result.ItemsNew,
		"stale", result.ItemsStale,
		"duration", result.Duration)

	return result
}

func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{status: resp.StatusCode, text: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if len(data) == 0 {
		return nil, &httpStatusError{status: resp.StatusCode, text: "empty response body"}
	}

	return data, nil
}

// enrichSummaries fills in thin summaries from the article pages.
// Best effort: extraction failures leave the article unchanged.
func (f *Fetcher) enrichSummaries(ctx context.Context, articles []Article) {
	for i := range articles {
		if !f.extractor.NeedsEnrichment(articles[i]) {
			continue
		}

		summary, err := f.extractor.Run(ctx, articles[i].Link)
		if err != nil {
			slog.Debug("Summary enrichment failed", "link", articles[i].Link, "error", err)
			continue
		}
		if summary != "" {
			articles[i].Summary = truncateSummary(summary, maxSummaryLength)
		}
	}
}

// acquireHostSlot blocks until a per-host slot is free, so no single
// destination sees more than perHost concurrent requests.
func (f *Fetcher) acquireHostSlot(feedURL string) func() {
	host := ""
	if parsed, err := url.Parse(feedURL); err == nil {
		host = parsed.Host
	}

	f.mu.Lock()
	slots, ok := f.hostSlots[host]
	if !ok {
		slots = make(chan struct{}, f.perHost)
		f.hostSlots[host] = slots
	}
	f.mu.Unlock()

	slots <- struct{}{}
	return func() { <-slots }
}

type httpStatusError struct {
	status int
	text   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.status, e.text)
}

func classifyFetchError(err error) (Status, string) {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return StatusHTTPError, statusErr.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout, err.Error()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout, err.Error()
	}

	return StatusException, err.Error()
}
