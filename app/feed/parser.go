package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/sportwire/app/sources"
)

const (
	idWidth          = 16
	maxSummaryLength = 500
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed data from one source into canonical articles.
// Missing entry fields degrade to neutral defaults, never an error.
func (p *Parser) Run(data []byte, source sources.Source) ([]Article, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	collectedAt := time.Now().UTC()

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, p.normalizeItem(item, source, collectedAt))
	}

	return articles, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, source sources.Source, collectedAt time.Time) Article {
	title := CleanText(item.Title)
	link := strings.TrimSpace(item.Link)

	article := Article{
		ID:          ComputeID(title, link),
		Title:       title,
		Link:        link,
		Summary:     truncateSummary(CleanText(cmp.Or(item.Description, item.Content)), maxSummaryLength),
		Author:      p.extractAuthor(item),
		SourceName:  source.Name,
		SourceURL:   source.URL,
		GUID:        cmp.Or(item.GUID, item.Link),
		CollectedAt: collectedAt,
	}

	if item.Categories != nil {
		article.FeedCategories = item.Categories
	}

	article.PublishedRaw = cmp.Or(item.Published, item.Updated)

	if published := p.parseDate(item); published != nil {
		utc := published.UTC()
		article.PublishedAt = &utc
		article.PublishedLocal = utc.In(time.Local).Format("2006-01-02 15:04:05 MST")
	} else {
		article.DateUnparseable = article.PublishedRaw != ""
	}

	return article
}

// parseDate resolves the entry timestamp, preferring gofeed's parsed
// values and falling back to tolerant parsing of the raw strings.
// Timezone-naive timestamps are assumed to be UTC.
func (p *Parser) parseDate(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}

	for _, raw := range []string{item.Published, item.Updated} {
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC); err == nil {
			return &t
		}
	}

	return nil
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		if name := strings.TrimSpace(item.Authors[0].Name); name != "" {
			return name
		}
	}
	if item.Author != nil {
		if name := strings.TrimSpace(item.Author.Name); name != "" {
			return name
		}
	}
	return ""
}

// ComputeID derives the stable article id from the normalized title
// and link. The same (title, link) pair always yields the same id.
func ComputeID(title, link string) string {
	content := fmt.Sprintf("%s|%s",
		strings.ToLower(strings.TrimSpace(title)),
		strings.TrimSpace(link))

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])[:idWidth]
}

// CleanText strips HTML markup and collapses whitespace.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

// truncateSummary cuts the summary at a word boundary near the limit.
func truncateSummary(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}

	return cut + "..."
}
