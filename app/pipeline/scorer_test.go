package pipeline

import (
	"testing"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

func scoringArticle(id, title, summary, source string, publishedAt *time.Time, collectedAt time.Time) feed.Article {
	return feed.Article{
		ID:          id,
		Title:       title,
		Summary:     summary,
		Link:        "https://example.com/news/" + id,
		SourceName:  source,
		PublishedAt: publishedAt,
		CollectedAt: collectedAt,
	}
}

func TestScorer_Run_SkipsAlreadyScored(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	published := now.Add(-30 * time.Minute)

	articles := []feed.Article{
		scoringArticle("a1", "Breaking: striker signs record transfer deal", "Official announcement expected.", "BBC Sport", &published, now),
	}

	scorer := NewScorer()

	first := scorer.Run(articles, now, false)
	if first.Scored != 1 {
		t.Fatalf("expected 1 article scored, got %d", first.Scored)
	}
	originalScore := articles[0].ImportanceScore

	second := scorer.Run(articles, now.Add(time.Hour), false)
	if second.Skipped != 1 || second.Scored != 0 {
		t.Errorf("expected rerun to skip, got scored=%d skipped=%d", second.Scored, second.Skipped)
	}
	if articles[0].ImportanceScore != originalScore {
		t.Errorf("score changed on rerun: %f != %f", articles[0].ImportanceScore, originalScore)
	}
}

func TestScorer_Run_ForceRescores(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	published := now.Add(-30 * time.Minute)

	articles := []feed.Article{
		scoringArticle("a1", "Breaking: striker signs record transfer deal", "", "BBC Sport", &published, now),
	}

	scorer := NewScorer()
	scorer.Run(articles, now, false)

	stats := scorer.Run(articles, now, true)
	if stats.Scored != 1 || stats.Skipped != 0 {
		t.Errorf("expected force to rescore, got scored=%d skipped=%d", stats.Scored, stats.Skipped)
	}
}

func TestScorer_Run_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	published := now.Add(-3 * time.Hour)

	build := func() []feed.Article {
		return []feed.Article{
			scoringArticle("a1", "Manchester United confirm injury blow before derby", "Key midfielder ruled out of the derby.", "Sky Sports", &published, now),
			scoringArticle("a2", "Verstappen takes pole position at rain-hit qualifying", "Dramatic session ends with a shock result.", "Motorsport.com", &published, now),
		}
	}

	first, second := build(), build()
	scorer := NewScorer()
	scorer.Run(first, now, false)
	scorer.Run(second, now, false)

	for i := range first {
		if first[i].ImportanceScore != second[i].ImportanceScore {
			t.Errorf("article %s scored differently across identical runs: %f != %f",
				first[i].ID, first[i].ImportanceScore, second[i].ImportanceScore)
		}
	}
}

func TestScorer_Run_BreakingOutscoresRoutine(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-30 * time.Minute)
	older := now.Add(-20 * time.Hour)

	articles := []feed.Article{
		scoringArticle("breaking", "Breaking: Messi signs shock transfer deal, official announcement confirmed",
			"Stunning move rocks football as the record transfer is confirmed by the club.", "BBC Sport", &fresh, now),
		scoringArticle("routine", "Midweek round-up of lower league fixtures",
			"A quiet evening of routine fixtures across the divisions.", "Unknown Blog", &older, now),
	}

	NewScorer().Run(articles, now, false)

	if articles[0].ImportanceScore <= articles[1].ImportanceScore {
		t.Errorf("breaking story (%.1f) should outscore routine report (%.1f)",
			articles[0].ImportanceScore, articles[1].ImportanceScore)
	}
	if articles[0].Breakdown == nil || articles[1].Breakdown == nil {
		t.Fatal("expected scoring breakdowns on both articles")
	}
	if articles[0].Breakdown.Temporal <= articles[1].Breakdown.Temporal {
		t.Errorf("fresher article should have higher temporal sub-score")
	}
}

func TestScorer_Run_TrendingBoost(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	published := now.Add(-time.Hour)

	// "wildcat" appears in three recent titles and triggers the boost;
	// the fourth article shares no trending word.
	articles := []feed.Article{
		scoringArticle("t1", "Wildcat storm into the playoff final", "", "ESPN", &published, now),
		scoringArticle("t2", "Wildcat coach praises the squad", "", "ESPN", &published, now),
		scoringArticle("t3", "Fans celebrate wildcat comeback", "", "ESPN", &published, now),
		scoringArticle("t4", "Quiet afternoon elsewhere in the league", "", "ESPN", &published, now),
	}

	NewScorer().Run(articles, now, false)

	if articles[0].Breakdown.TrendingBoost <= 1.0 {
		t.Errorf("expected trending boost > 1.0, got %f", articles[0].Breakdown.TrendingBoost)
	}
	if articles[0].Breakdown.TrendingBoost > trendingMaxBoost {
		t.Errorf("trending boost %f exceeds cap %f", articles[0].Breakdown.TrendingBoost, trendingMaxBoost)
	}
	if articles[3].Breakdown.TrendingBoost != 1.0 {
		t.Errorf("article without trending words got boost %f", articles[3].Breakdown.TrendingBoost)
	}
}

func TestScorer_Run_TrendingKeywordsReported(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	published := now.Add(-time.Hour)

	articles := []feed.Article{
		scoringArticle("t1", "Thunderhawks win the opener", "", "ESPN", &published, now),
		scoringArticle("t2", "Thunderhawks extend winning run", "", "ESPN", &published, now),
		scoringArticle("t3", "Thunderhawks eye the title", "", "ESPN", &published, now),
	}

	stats := NewScorer().Run(articles, now, false)

	found := false
	for _, word := range stats.TrendingKeywords {
		if word == "thunderhawks" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected thunderhawks in trending keywords, got %v", stats.TrendingKeywords)
	}
}

func TestScorer_TemporalScore_UnparseableDateDefault(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	scorer := NewScorer()
	if got := scorer.temporalScore(nil, now); got != defaultTemporal {
		t.Errorf("expected default temporal score %f for missing date, got %f", defaultTemporal, got)
	}
}

func TestScorer_SourceScore_PartialMatchDiscount(t *testing.T) {
	scorer := NewScorer()

	exact := scorer.sourceScore("BBC Sport")
	partial := scorer.sourceScore("BBC Sport Africa")
	unknown := scorer.sourceScore("Random Sports Blog")

	if exact != 10 {
		t.Errorf("expected exact match score 10, got %f", exact)
	}
	if partial != 8 {
		t.Errorf("expected partial match score 8, got %f", partial)
	}
	if unknown != defaultSourceScore {
		t.Errorf("expected default score %f for unknown source, got %f", defaultSourceScore, unknown)
	}
}

func TestTier_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{120, TierCritical},
		{80, TierCritical},
		{79.9, TierHigh},
		{60, TierHigh},
		{40, TierMedium},
		{20, TierLow},
		{19.9, TierMinimal},
		{0, TierMinimal},
	}

	for _, c := range cases {
		if got := Tier(c.score); got != c.want {
			t.Errorf("Tier(%f) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestDistributionBand_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{90, "critical"},
		{65, "high"},
		{45, "medium"},
		{25, "low"},
		{5, "low"},
	}

	for _, c := range cases {
		if got := DistributionBand(c.score); got != c.want {
			t.Errorf("DistributionBand(%f) = %q, want %q", c.score, got, c.want)
		}
	}
}
