package pipeline

import (
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lysyi3m/sportwire/app/feed"
)

const (
	contentScoreCap    = 50.0
	engagementScoreCap = 30.0
	defaultSourceScore = 5.0
	defaultTemporal    = 5.0

	trendingWindow      = 24 * time.Hour
	trendingMinWord     = 4
	trendingMinArticles = 3
	trendingMaxBoost    = 3.0
)

// Tier labels derived from the importance score. The top-level score
// is intentionally uncapped; anything past 100 still lands in
// Critical.
const (
	TierCritical = "Critical"
	TierHigh     = "High"
	TierMedium   = "Medium"
	TierLow      = "Low"
	TierMinimal  = "Minimal"
)

// ScoreStats summarizes one scoring pass.
type ScoreStats struct {
	Scored           int
	Skipped          int
	TrendingKeywords []string
}

// Scorer computes the multi-factor importance score. Already-scored
// articles are skipped unless force is set, so incremental runs never
// change existing scores.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Run scores the batch in place and returns pass statistics.
func (s *Scorer) Run(articles []feed.Article, now time.Time, force bool) ScoreStats {
	wordCounts, recentTotal := s.buildTrendingTable(articles, now)

	stats := ScoreStats{
		TrendingKeywords: topTrendingKeywords(wordCounts),
	}

	for i := range articles {
		if articles[i].ScoredAt != nil && !force {
			stats.Skipped++
			continue
		}

		s.scoreArticle(&articles[i], now, wordCounts, recentTotal)
		stats.Scored++
	}

	slog.Debug("Scoring pass complete",
		"scored", stats.Scored,
		"skipped", stats.Skipped,
		"trending", len(stats.TrendingKeywords))

	return stats
}

func (s *Scorer) scoreArticle(article *feed.Article, now time.Time, wordCounts map[string]int, recentTotal int) {
	content := s.contentScore(article)
	source := s.sourceScore(article.SourceName)
	temporal := s.temporalScore(article.PublishedAt, now)
	engagement := s.engagementScore(article)
	multiplier := s.categoryMultiplier(article.FeedCategories)
	boost := s.trendingBoost(article, wordCounts, recentTotal)

	weighted := 0.4*content + 0.25*source + 0.2*temporal + 0.15*engagement
	final := weighted * multiplier * boost

	article.ImportanceScore = final
	article.ImportanceTier = Tier(final)
	article.Breakdown = &feed.ScoreBreakdown{
		Content:            content,
		Source:             source,
		Temporal:           temporal,
		Engagement:         engagement,
		CategoryMultiplier: multiplier,
		TrendingBoost:      boost,
	}
	scoredAt := now
	article.ScoredAt = &scoredAt
}

// contentScore sums keyword weights with diminishing returns per
// repeat occurrence, plus small structural bonuses. Capped at 50.
func (s *Scorer) contentScore(article *feed.Article) float64 {
	text := foldText(article.Title + " " + article.Summary)

	score := 0.0
	for keyword, weight := range contentKeywords {
		count := countWholeWord(text, keyword)
		if count > 0 {
			score += weight * (1 + 0.5*float64(count-1))
		}
	}

	titleLen := utf8.RuneCountInString(article.Title)
	if titleLen >= 30 && titleLen <= 90 {
		score += 3
	}
	if utf8.RuneCountInString(article.Summary) >= 120 {
		score += 3
	}
	if strings.ContainsFunc(article.Title, unicode.IsDigit) {
		score += 2
	}

	return min(score, contentScoreCap)
}

// sourceScore looks up source authority with case-insensitive
// substring matching. Partial matches are discounted x0.8.
func (s *Scorer) sourceScore(sourceName string) float64 {
	name := foldText(strings.TrimSpace(sourceName))
	if name == "" {
		return defaultSourceScore
	}

	best := 0.0
	for known, weight := range sourceAuthority {
		switch {
		case name == known:
			best = max(best, weight)
		case strings.Contains(name, known) || strings.Contains(known, name):
			best = max(best, weight*0.8)
		}
	}

	if best == 0 {
		return defaultSourceScore
	}
	return best
}

// temporalScore is a step function of article age in hours.
func (s *Scorer) temporalScore(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil {
		return defaultTemporal
	}

	age := now.Sub(*publishedAt).Hours()
	switch {
	case age <= 1:
		return 10
	case age <= 6:
		return 8
	case age <= 12:
		return 6
	case age <= 24:
		return 4
	case age <= 72:
		return 3
	case age <= 168:
		return 2
	default:
		return 1
	}
}

// engagementScore rewards popular players and teams plus attention
// markers. Capped at 30.
func (s *Scorer) engagementScore(article *feed.Article) float64 {
	text := foldText(article.Title + " " + article.Summary)

	score := 0.0
	for player, weight := range popularPlayers {
		if containsWholeWord(text, player) {
			score += weight * 1.2
		}
	}
	for team, weight := range popularTeams {
		if containsWholeWord(text, team) {
			score += weight * 0.8
		}
	}

	for _, keyword := range emotionalKeywords {
		if containsWholeWord(text, keyword) {
			score += 2
		}
	}
	if strings.Contains(article.Title, "?") {
		score += 2
	}
	for _, keyword := range superlatives {
		if containsWholeWord(text, keyword) {
			score += 1
		}
	}

	return min(score, engagementScoreCap)
}

// categoryMultiplier takes the max multiplier over the raw feed tags.
func (s *Scorer) categoryMultiplier(feedCategories []string) float64 {
	multiplier := 1.0
	for _, tag := range feedCategories {
		folded := foldText(strings.TrimSpace(tag))
		if m, ok := feedTagMultipliers[folded]; ok {
			multiplier = max(multiplier, m)
		}
	}
	return multiplier
}

// buildTrendingTable counts, for every word of 4+ letters, how many
// recently collected articles contain it.
func (s *Scorer) buildTrendingTable(articles []feed.Article, now time.Time) (map[string]int, int) {
	wordCounts := make(map[string]int)
	recentTotal := 0

	for i := range articles {
		if now.Sub(articles[i].CollectedAt) > trendingWindow {
			continue
		}
		recentTotal++

		seen := make(map[string]bool)
		for _, word := range tokenizeWords(foldText(articles[i].Title), trendingMinWord) {
			if !seen[word] {
				seen[word] = true
				wordCounts[word]++
			}
		}
	}

	return wordCounts, recentTotal
}

// trendingBoost returns a factor in [1.0, 3.0]. A word must appear in
// at least trendingMinArticles recent articles to trigger; frequency
// is the fraction of recent articles containing the word.
func (s *Scorer) trendingBoost(article *feed.Article, wordCounts map[string]int, recentTotal int) float64 {
	if recentTotal == 0 {
		return 1.0
	}

	boost := 1.0
	for _, word := range tokenizeWords(foldText(article.Title), trendingMinWord) {
		count := wordCounts[word]
		if count < trendingMinArticles {
			continue
		}
		frequency := float64(count) / float64(recentTotal)
		boost = max(boost, 1.0+min(frequency*10, 2.0))
	}

	return min(boost, trendingMaxBoost)
}

func topTrendingKeywords(wordCounts map[string]int) []string {
	type wordCount struct {
		word  string
		count int
	}

	trending := make([]wordCount, 0)
	for word, count := range wordCounts {
		if count >= trendingMinArticles {
			trending = append(trending, wordCount{word, count})
		}
	}

	sort.Slice(trending, func(i, j int) bool {
		if trending[i].count != trending[j].count {
			return trending[i].count > trending[j].count
		}
		return trending[i].word < trending[j].word
	})

	if len(trending) > 20 {
		trending = trending[:20]
	}

	words := make([]string, len(trending))
	for i, wc := range trending {
		words[i] = wc.word
	}
	return words
}

// Tier maps a score to the five-label tier set.
func Tier(score float64) string {
	switch {
	case score >= 80:
		return TierCritical
	case score >= 60:
		return TierHigh
	case score >= 40:
		return TierMedium
	case score >= 20:
		return TierLow
	default:
		return TierMinimal
	}
}

// DistributionBand maps a score to the four-label set used in the
// store metadata's importance distribution. Same cut points as Tier,
// with everything under 40 reported as low.
func DistributionBand(score float64) string {
	switch {
	case score >= 80:
		return "critical"
	case score >= 60:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}
