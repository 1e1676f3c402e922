package pipeline

import (
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

const (
	categorySourceBonus  = 15.0
	categoryMinScore     = 5.0
	categoryAmbiguityGap = 0.7
)

// CategorizeStats reports one categorization pass.
type CategorizeStats struct {
	Assigned      int
	Uncategorized int
	PerCategory   map[string]int
}

// Categorizer assigns each article to the fixed sport taxonomy via
// keyword and source matching. Every run recomputes every article's
// category, so taxonomy changes take effect on the next pass.
type Categorizer struct{}

func NewCategorizer() *Categorizer {
	return &Categorizer{}
}

// Run stamps category and categorization date on every article.
func (c *Categorizer) Run(articles []feed.Article, now time.Time) CategorizeStats {
	stats := CategorizeStats{
		PerCategory: make(map[string]int),
	}

	for i := range articles {
		category := c.categorize(&articles[i])

		articles[i].Category = category
		categorizedAt := now
		articles[i].CategorizedAt = &categorizedAt

		stats.PerCategory[category]++
		if category == CategoryUncategorized {
			stats.Uncategorized++
		} else {
			stats.Assigned++
		}
	}

	slog.Debug("Categorization pass",
		"assigned", stats.Assigned,
		"uncategorized", stats.Uncategorized)

	return stats
}

// categorize scores every category and applies the minimum-score and
// ambiguity rules. A runner-up within 70% of the winner means the
// match is too ambiguous to trust.
func (c *Categorizer) categorize(article *feed.Article) string {
	text := foldText(article.Title + " " + article.Summary)
	sourceName := foldText(article.SourceName)

	best, runnerUp := 0.0, 0.0
	bestCategory := CategoryUncategorized

	for _, category := range categoryOrder {
		score := c.categoryScore(categoryRules[category], text, sourceName)

		if score > best {
			runnerUp = best
			best = score
			bestCategory = category
		} else if score > runnerUp {
			runnerUp = score
		}
	}

	if best < categoryMinScore {
		return CategoryUncategorized
	}
	if runnerUp >= best*categoryAmbiguityGap {
		return CategoryUncategorized
	}

	return bestCategory
}

func (c *Categorizer) categoryScore(rule categoryRule, text, sourceName string) float64 {
	score := 0.0

	for _, known := range rule.sources {
		if strings.Contains(sourceName, known) {
			score += categorySourceBonus
			break
		}
	}

	for _, keyword := range rule.keywords {
		if containsWholeWord(text, keyword) {
			score += keywordWeight(keyword)
		}
	}

	return score
}

// keywordWeight scales with keyword length: longer keywords are more
// specific and weigh more.
func keywordWeight(keyword string) float64 {
	switch length := len(keyword); {
	case length > 10:
		return 5
	case length > 8:
		return 3
	case length > 5:
		return 2
	default:
		return 1
	}
}

// Categories returns the fixed taxonomy in its canonical order.
func Categories() []string {
	return append([]string(nil), categoryOrder...)
}
