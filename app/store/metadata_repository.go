package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

var _ MetadataRepository = (*SQLMetadataRepository)(nil)

type SQLMetadataRepository struct {
	db *DB
}

func NewMetadataRepository(db *DB) *SQLMetadataRepository {
	return &SQLMetadataRepository{db: db}
}

func (r *SQLMetadataRepository) Get() (*Metadata, error) {
	var meta Metadata
	var sources, trending, distribution string
	var lastRanked, lastCategorization sql.NullTime

	err := r.db.QueryRow(`
		SELECT created_date, last_updated, total_articles, sources,
		       scoring_applied, trending_keywords, importance_distribution,
		       last_ranked, last_categorization
		FROM metadata WHERE id = 1
	`).Scan(&meta.CreatedDate, &meta.LastUpdated, &meta.TotalArticles, &sources,
		&meta.ScoringApplied, &trending, &distribution,
		&lastRanked, &lastCategorization)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	if err := json.Unmarshal([]byte(sources), &meta.Sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}
	if err := json.Unmarshal([]byte(trending), &meta.TrendingKeywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trending keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(distribution), &meta.ImportanceDistribution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal importance distribution: %w", err)
	}

	if lastRanked.Valid {
		t := lastRanked.Time.UTC()
		meta.LastRanked = &t
	}
	if lastCategorization.Valid {
		t := lastCategorization.Time.UTC()
		meta.LastCategorization = &t
	}
	meta.CreatedDate = meta.CreatedDate.UTC()
	meta.LastUpdated = meta.LastUpdated.UTC()

	return &meta, nil
}

func (r *SQLMetadataRepository) Touch(totalArticles int, sources []string) error {
	if sources == nil {
		sources = []string{}
	}
	data, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	_, err = r.db.Exec(`
		UPDATE metadata
		SET last_updated = ?, total_articles = ?, sources = ?
		WHERE id = 1
	`, time.Now().UTC(), totalArticles, string(data))
	if err != nil {
		return fmt.Errorf("failed to touch metadata: %w", err)
	}

	return nil
}

func (r *SQLMetadataRepository) SetScoring(trendingKeywords []string, distribution map[string]int) error {
	if trendingKeywords == nil {
		trendingKeywords = []string{}
	}
	if distribution == nil {
		distribution = map[string]int{}
	}

	trending, err := json.Marshal(trendingKeywords)
	if err != nil {
		return fmt.Errorf("failed to marshal trending keywords: %w", err)
	}
	dist, err := json.Marshal(distribution)
	if err != nil {
		return fmt.Errorf("failed to marshal importance distribution: %w", err)
	}

	_, err = r.db.Exec(`
		UPDATE metadata
		SET scoring_applied = 1, trending_keywords = ?, importance_distribution = ?
		WHERE id = 1
	`, string(trending), string(dist))
	if err != nil {
		return fmt.Errorf("failed to set scoring metadata: %w", err)
	}

	return nil
}

func (r *SQLMetadataRepository) SetLastRanked(t time.Time) error {
	if _, err := r.db.Exec("UPDATE metadata SET last_ranked = ? WHERE id = 1", t.UTC()); err != nil {
		return fmt.Errorf("failed to set last ranked: %w", err)
	}
	return nil
}

func (r *SQLMetadataRepository) SetLastCategorization(t time.Time) error {
	if _, err := r.db.Exec("UPDATE metadata SET last_categorization = ? WHERE id = 1", t.UTC()); err != nil {
		return fmt.Errorf("failed to set last categorization: %w", err)
	}
	return nil
}
