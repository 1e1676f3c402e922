package pipeline

import (
	"testing"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

func TestFreshness_FreshEnough_HorizonBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	freshness := NewFreshness(24 * time.Hour)

	justInside := now.Add(-24*time.Hour + time.Second)
	exactly := now.Add(-24 * time.Hour)
	justOutside := now.Add(-24*time.Hour - time.Second)

	cases := []struct {
		name        string
		publishedAt *time.Time
		want        bool
	}{
		{"23h59m59s old", &justInside, true},
		{"exactly 24h old", &exactly, false},
		{"24h0m1s old", &justOutside, false},
		{"no published date", nil, true},
	}

	for _, c := range cases {
		article := feed.Article{ID: "x", PublishedAt: c.publishedAt}
		if got := freshness.FreshEnough(article, now); got != c.want {
			t.Errorf("%s: FreshEnough = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFreshness_Cleanup_RemovesStale(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	freshness := NewFreshness(24 * time.Hour)

	fresh := now.Add(-2 * time.Hour)
	stale := now.Add(-30 * time.Hour)

	articles := []feed.Article{
		{ID: "fresh", PublishedAt: &fresh, CollectedAt: now},
		{ID: "stale", PublishedAt: &stale, CollectedAt: now.Add(-30 * time.Hour)},
	}

	kept, result := freshness.Cleanup(articles, now)

	if len(kept) != 1 || kept[0].ID != "fresh" {
		t.Errorf("expected only the fresh article kept, got %+v", kept)
	}
	if len(result.RemovedIDs) != 1 || result.RemovedIDs[0] != "stale" {
		t.Errorf("expected stale article removed, got %v", result.RemovedIDs)
	}
	if result.Examined != 2 {
		t.Errorf("expected 2 examined, got %d", result.Examined)
	}
}

func TestFreshness_Cleanup_FallsBackToCollectedDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	freshness := NewFreshness(24 * time.Hour)

	articles := []feed.Article{
		{ID: "recent-collect", CollectedAt: now.Add(-time.Hour)},
		{ID: "old-collect", CollectedAt: now.Add(-48 * time.Hour)},
	}

	kept, result := freshness.Cleanup(articles, now)

	if len(kept) != 1 || kept[0].ID != "recent-collect" {
		t.Errorf("expected collected date fallback to keep the recent article, got %+v", kept)
	}
	if len(result.RemovedIDs) != 1 || result.RemovedIDs[0] != "old-collect" {
		t.Errorf("expected old-collect removed, got %v", result.RemovedIDs)
	}
}

func TestFreshness_Cleanup_NoDatesKeptAndFlagged(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	freshness := NewFreshness(24 * time.Hour)

	articles := []feed.Article{{ID: "dateless"}}

	kept, result := freshness.Cleanup(articles, now)

	if len(kept) != 1 {
		t.Fatalf("dateless article must never be removed, kept=%d", len(kept))
	}
	if !kept[0].DateUnparseable {
		t.Error("expected dateless article flagged unparseable")
	}
	if result.Unparseable != 1 {
		t.Errorf("expected 1 unparseable, got %d", result.Unparseable)
	}
	if len(result.RemovedIDs) != 0 {
		t.Errorf("expected no removals, got %v", result.RemovedIDs)
	}
}

func TestNewFreshness_DefaultHorizon(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	freshness := NewFreshness(0)

	published := now.Add(-12 * time.Hour)
	if !freshness.FreshEnough(feed.Article{PublishedAt: &published}, now) {
		t.Error("zero horizon should fall back to 24h")
	}
}
