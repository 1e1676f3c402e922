package pipeline

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

const (
	defaultSimilarityThreshold = 0.75
	defaultURLThreshold        = 0.85

	titleWeight   = 0.7
	summaryWeight = 0.3

	defaultReliability = 3.0
)

// DedupResult reports one deduplication pass.
type DedupResult struct {
	Initial    int
	Removed    int
	Final      int
	RemovedIDs []string
}

// Deduplicator removes near-duplicate stories reported by multiple
// outlets. Duplicates are only compared within the same category; the
// highest quality-score copy survives, ties favoring the article
// encountered first. Deterministic for a fixed input order.
type Deduplicator struct {
	simThreshold float64
	urlThreshold float64
}

func NewDeduplicator(simThreshold, urlThreshold float64) *Deduplicator {
	if simThreshold <= 0 || simThreshold > 1 {
		simThreshold = defaultSimilarityThreshold
	}
	if urlThreshold <= 0 || urlThreshold > 1 {
		urlThreshold = defaultURLThreshold
	}
	return &Deduplicator{
		simThreshold: simThreshold,
		urlThreshold: urlThreshold,
	}
}

// Run returns the surviving articles in input order plus pass counts.
func (d *Deduplicator) Run(articles []feed.Article, now time.Time) ([]feed.Article, DedupResult) {
	result := DedupResult{Initial: len(articles)}

	removed := make(map[string]bool)

	// Partition indexes by category; dedup never crosses categories.
	buckets := make(map[string][]int)
	bucketOrder := make([]string, 0)
	for i := range articles {
		category := articles[i].Category
		if _, ok := buckets[category]; !ok {
			bucketOrder = append(bucketOrder, category)
		}
		buckets[category] = append(buckets[category], i)
	}

	for _, category := range bucketOrder {
		d.dedupURLPass(articles, buckets[category], removed, now)
		d.dedupContentPass(articles, buckets[category], removed, now)
	}

	survivors := make([]feed.Article, 0, len(articles))
	for i := range articles {
		if removed[articles[i].ID] {
			result.RemovedIDs = append(result.RemovedIDs, articles[i].ID)
			continue
		}
		survivors = append(survivors, articles[i])
	}

	result.Removed = len(result.RemovedIDs)
	result.Final = len(survivors)

	slog.Debug("Deduplication pass",
		"initial", result.Initial,
		"removed", result.Removed,
		"final", result.Final)

	return survivors, result
}

// dedupURLPass keeps only the highest-quality article within any
// group sharing a normalized URL.
func (d *Deduplicator) dedupURLPass(articles []feed.Article, bucket []int, removed map[string]bool, now time.Time) {
	byURL := make(map[string]int)

	for _, idx := range bucket {
		if removed[articles[idx].ID] {
			continue
		}

		normalized := NormalizeURL(articles[idx].Link)
		if normalized == "" {
			continue
		}

		keptIdx, ok := byURL[normalized]
		if !ok {
			byURL[normalized] = idx
			continue
		}

		// Equal quality keeps the earlier article.
		if QualityScore(articles[idx], now) > QualityScore(articles[keptIdx], now) {
			removed[articles[keptIdx].ID] = true
			byURL[normalized] = idx
		} else {
			removed[articles[idx].ID] = true
		}
	}
}

// dedupContentPass removes the lower-quality article of any remaining
// pair whose combined title/summary similarity crosses the threshold.
func (d *Deduplicator) dedupContentPass(articles []feed.Article, bucket []int, removed map[string]bool, now time.Time) {
	for i := 0; i < len(bucket); i++ {
		a := bucket[i]
		if removed[articles[a].ID] {
			continue
		}

		for j := i + 1; j < len(bucket); j++ {
			b := bucket[j]
			if removed[articles[b].ID] {
				continue
			}

			similarity := d.contentSimilarity(articles[a], articles[b])
			if similarity < d.simThreshold {
				continue
			}

			if QualityScore(articles[b], now) > QualityScore(articles[a], now) {
				removed[articles[a].ID] = true
				break
			}
			removed[articles[b].ID] = true
		}
	}
}

// contentSimilarity blends title and summary similarity, falling back
// to title-only when either summary is empty.
func (d *Deduplicator) contentSimilarity(a, b feed.Article) float64 {
	titleSim := similarityRatio(foldText(a.Title), foldText(b.Title))

	if a.Summary == "" || b.Summary == "" {
		return titleSim
	}

	summarySim := similarityRatio(foldText(a.Summary), foldText(b.Summary))
	return titleWeight*titleSim + summaryWeight*summarySim
}

// QualityScore ranks duplicate candidates: source reliability plus
// completeness, importance, and freshness bonuses. Used only to pick
// which copy of a duplicate survives.
func QualityScore(article feed.Article, now time.Time) float64 {
	score := reliabilityScore(article.SourceName)
	score += completenessBonus(article)
	score += min(article.ImportanceScore/30, 3)
	score += freshnessBonus(article, now)
	return score
}

func reliabilityScore(sourceName string) float64 {
	name := foldText(strings.TrimSpace(sourceName))
	if name == "" {
		return defaultReliability
	}

	best := 0.0
	for known, weight := range sourceReliability {
		if name == known || strings.Contains(name, known) || strings.Contains(known, name) {
			best = max(best, weight)
		}
	}

	if best == 0 {
		return defaultReliability
	}
	return best
}

func completenessBonus(article feed.Article) float64 {
	titleLen := len(article.Title)
	summaryLen := len(article.Summary)

	switch {
	case titleLen > 30 && summaryLen > 100:
		return 3
	case titleLen > 20 && summaryLen > 50:
		return 2
	case titleLen > 10:
		return 1
	default:
		return 0
	}
}

func freshnessBonus(article feed.Article, now time.Time) float64 {
	if article.PublishedAt == nil {
		return 0
	}

	age := now.Sub(*article.PublishedAt)
	switch {
	case age <= 6*time.Hour:
		return 2
	case age <= 24*time.Hour:
		return 1
	default:
		return 0
	}
}

// NormalizeURL strips protocol, www prefix, query string, fragment,
// and trailing slash so the same story URL compares equal across
// outlets' tracking parameters.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimSuffix(parsed.EscapedPath(), "/")

	return host + path
}
