package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

// Summaries shorter than this are considered thin enough to be worth
// a page fetch.
const thinSummaryLength = 80

// Extractor pulls readable text from article pages to enrich entries
// whose feeds ship little or no summary.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewExtractor(httpClient *http.Client, userAgent string, timeout time.Duration) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (e *Extractor) NeedsEnrichment(article Article) bool {
	return article.Link != "" && utf8.RuneCountInString(article.Summary) < thinSummaryLength
}

// Run fetches the page and returns its readable text.
func (e *Extractor) Run(ctx context.Context, pageURL string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", fmt.Errorf("unexpected content type: %s", contentType)
	}

	article, err := readability.FromReader(resp.Body, req.URL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		return "", fmt.Errorf("no content extracted from page")
	}

	return text, nil
}
