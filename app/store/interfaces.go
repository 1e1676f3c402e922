package store

import (
	"time"

	"github.com/lysyi3m/sportwire/app/feed"
)

type ArticleRepository interface {
	GetAll() ([]feed.Article, error)
	GetByCategory(category string) ([]feed.Article, error)
	GetCount() (int, error)
	Exists(id string) (bool, error)

	Insert(article feed.Article) error
	UpdateScores(articles []feed.Article) error
	UpdateCategories(articles []feed.Article) error
	UpdateRanks(ordered []feed.Article) error
	MarkUnparseable(ids []string) error
	Delete(ids []string) error

	SourceNames() ([]string, error)
}

type MetadataRepository interface {
	Get() (*Metadata, error)

	Touch(totalArticles int, sources []string) error
	SetScoring(trendingKeywords []string, distribution map[string]int) error
	SetLastRanked(t time.Time) error
	SetLastCategorization(t time.Time) error
}
