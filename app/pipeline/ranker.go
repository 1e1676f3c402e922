package pipeline

import (
	"log/slog"
	"sort"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

// Time brackets in freshest-first order. Every article in a fresher
// bracket ranks ahead of every article in a less fresh one.
const (
	BracketUltraFresh = "ultra_fresh" // 0-2h
	BracketVeryFresh  = "very_fresh"  // 2-6h
	BracketFresh      = "fresh"       // 6-12h
	BracketRecent     = "recent"      // 12-24h and everything else
)

var bracketOrder = []string{
	BracketUltraFresh, BracketVeryFresh, BracketFresh, BracketRecent,
}

// Ranker produces the canonical hybrid order: freshness bracket
// first, importance score second. Deterministic for identical input
// and an identical now.
type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Run assigns time brackets and a dense 1..N hybrid rank, returning
// the articles in rank order.
func (r *Ranker) Run(articles []feed.Article, now time.Time) []feed.Article {
	buckets := make(map[string][]feed.Article, len(bracketOrder))

	for i := range articles {
		bracket := TimeBracket(articles[i].PublishedAt, now)
		articles[i].TimeBracket = bracket
		buckets[bracket] = append(buckets[bracket], articles[i])
	}

	ranked := make([]feed.Article, 0, len(articles))
	for _, bracket := range bracketOrder {
		bucket := buckets[bracket]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].ImportanceScore > bucket[j].ImportanceScore
		})
		ranked = append(ranked, bucket...)
	}

	for i := range ranked {
		ranked[i].HybridRank = i + 1
	}

	slog.Debug("Ranking pass", "articles", len(ranked))

	return ranked
}

// TimeBracket buckets an article by age in hours. Unparseable dates
// default to recent. Ages are computed on wall-clock components with
// zone info stripped, which is not robust across DST boundaries but
// matches the established bracket behavior.
func TimeBracket(publishedAt *time.Time, now time.Time) string {
	if publishedAt == nil {
		return BracketRecent
	}

	age := stripZone(now.In(time.Local)).Sub(stripZone(publishedAt.In(time.Local))).Hours()
	switch {
	case age < 2:
		return BracketUltraFresh
	case age < 6:
		return BracketVeryFresh
	case age < 12:
		return BracketFresh
	default:
		return BracketRecent
	}
}

func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
