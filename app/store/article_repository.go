package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

var _ ArticleRepository = (*SQLArticleRepository)(nil)

type SQLArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

const articleColumns = `id, title, link, summary, author, source_name, source_url, guid,
	published_raw, published_at, published_local, collected_at, date_unparseable,
	feed_categories, category, categorized_at,
	importance_score, importance_tier, breakdown, scored_at,
	hybrid_rank, time_bracket`

// GetAll returns every stored article: ranked articles first in rank
// order, then unranked ones in insertion order. This is the canonical
// input order for pipeline stages.
func (r *SQLArticleRepository) GetAll() ([]feed.Article, error) {
	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT %s FROM articles
		ORDER BY CASE WHEN hybrid_rank > 0 THEN 0 ELSE 1 END, hybrid_rank, rowid
	`, articleColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// GetByCategory returns the ranked articles of one category.
// Uncategorized articles never appear in category views.
func (r *SQLArticleRepository) GetByCategory(category string) ([]feed.Article, error) {
	if category == "" || category == "uncategorized" {
		return nil, fmt.Errorf("invalid category view: %q", category)
	}

	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT %s FROM articles
		WHERE category = ?
		ORDER BY CASE WHEN hybrid_rank > 0 THEN 0 ELSE 1 END, hybrid_rank, rowid
	`, articleColumns), category)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles by category: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (r *SQLArticleRepository) GetCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (r *SQLArticleRepository) Exists(id string) (bool, error) {
	var found string
	err := r.db.QueryRow("SELECT id FROM articles WHERE id = ? LIMIT 1", id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}
	return true, nil
}

func (r *SQLArticleRepository) Insert(article feed.Article) error {
	feedCategories, err := json.Marshal(article.FeedCategories)
	if err != nil {
		return fmt.Errorf("failed to marshal feed categories: %w", err)
	}

	breakdown := ""
	if article.Breakdown != nil {
		data, err := json.Marshal(article.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to marshal breakdown: %w", err)
		}
		breakdown = string(data)
	}

	_, err = r.db.Exec(fmt.Sprintf(`
		INSERT INTO articles (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, articleColumns),
		article.ID, article.Title, article.Link, article.Summary, article.Author,
		article.SourceName, article.SourceURL, article.GUID,
		article.PublishedRaw, nullableTime(article.PublishedAt), article.PublishedLocal,
		article.CollectedAt, article.DateUnparseable,
		string(feedCategories), article.Category, nullableTime(article.CategorizedAt),
		article.ImportanceScore, article.ImportanceTier, breakdown, nullableTime(article.ScoredAt),
		article.HybridRank, article.TimeBracket)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// UpdateScores persists scoring fields for the batch in one
// transaction, so a failed pass never leaves a half-scored store.
func (r *SQLArticleRepository) UpdateScores(articles []feed.Article) error {
	return r.inTransaction(func(tx *sql.Tx) error {
		for i := range articles {
			breakdown := ""
			if articles[i].Breakdown != nil {
				data, err := json.Marshal(articles[i].Breakdown)
				if err != nil {
					return fmt.Errorf("failed to marshal breakdown: %w", err)
				}
				breakdown = string(data)
			}

			_, err := tx.Exec(`
				UPDATE articles
				SET importance_score = ?, importance_tier = ?, breakdown = ?, scored_at = ?
				WHERE id = ?
			`, articles[i].ImportanceScore, articles[i].ImportanceTier, breakdown,
				nullableTime(articles[i].ScoredAt), articles[i].ID)
			if err != nil {
				return fmt.Errorf("failed to update score: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLArticleRepository) UpdateCategories(articles []feed.Article) error {
	return r.inTransaction(func(tx *sql.Tx) error {
		for i := range articles {
			_, err := tx.Exec(`
				UPDATE articles
				SET category = ?, categorized_at = ?
				WHERE id = ?
			`, articles[i].Category, nullableTime(articles[i].CategorizedAt), articles[i].ID)
			if err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}
		}
		return nil
	})
}

// UpdateRanks persists the bracket and dense rank for the ranked
// order produced by the hybrid ranker.
func (r *SQLArticleRepository) UpdateRanks(ordered []feed.Article) error {
	return r.inTransaction(func(tx *sql.Tx) error {
		for i := range ordered {
			_, err := tx.Exec(`
				UPDATE articles
				SET hybrid_rank = ?, time_bracket = ?
				WHERE id = ?
			`, ordered[i].HybridRank, ordered[i].TimeBracket, ordered[i].ID)
			if err != nil {
				return fmt.Errorf("failed to update rank: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLArticleRepository) MarkUnparseable(ids []string) error {
	return r.inTransaction(func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.Exec("UPDATE articles SET date_unparseable = 1 WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to mark article unparseable: %w", err)
			}
		}
		return nil
	})
}

// Delete removes articles outright. Deduplicated-away and stale
// articles leave no tombstone.
func (r *SQLArticleRepository) Delete(ids []string) error {
	return r.inTransaction(func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.Exec("DELETE FROM articles WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete article: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLArticleRepository) SourceNames() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT source_name FROM articles ORDER BY source_name")
	if err != nil {
		return nil, fmt.Errorf("failed to get source names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan source name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (r *SQLArticleRepository) inTransaction(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanArticles(rows *sql.Rows) ([]feed.Article, error) {
	var articles []feed.Article

	for rows.Next() {
		var article feed.Article
		var publishedAt, categorizedAt, scoredAt sql.NullTime
		var feedCategories, breakdown string

		err := rows.Scan(
			&article.ID, &article.Title, &article.Link, &article.Summary, &article.Author,
			&article.SourceName, &article.SourceURL, &article.GUID,
			&article.PublishedRaw, &publishedAt, &article.PublishedLocal,
			&article.CollectedAt, &article.DateUnparseable,
			&feedCategories, &article.Category, &categorizedAt,
			&article.ImportanceScore, &article.ImportanceTier, &breakdown, &scoredAt,
			&article.HybridRank, &article.TimeBracket,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}

		if publishedAt.Valid {
			utc := publishedAt.Time.UTC()
			article.PublishedAt = &utc
		}
		if categorizedAt.Valid {
			t := categorizedAt.Time.UTC()
			article.CategorizedAt = &t
		}
		if scoredAt.Valid {
			t := scoredAt.Time.UTC()
			article.ScoredAt = &t
		}
		article.CollectedAt = article.CollectedAt.UTC()

		if feedCategories != "" && feedCategories != "null" {
			if err := json.Unmarshal([]byte(feedCategories), &article.FeedCategories); err != nil {
				return nil, fmt.Errorf("failed to unmarshal feed categories: %w", err)
			}
		}
		if breakdown != "" {
			var b feed.ScoreBreakdown
			if err := json.Unmarshal([]byte(breakdown), &b); err != nil {
				return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
			}
			article.Breakdown = &b
		}

		articles = append(articles, article)
	}

	return articles, rows.Err()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
