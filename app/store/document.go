package store

import (
	"fmt"

	"github.com/lysyi3m/sportwire/app/feed"
)

// Document is the persisted form read by the downstream
// content-generation consumer: run metadata plus the ordered article
// list. Per-category documents share the same shape.
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Articles []feed.Article `json:"articles"`
}

// BuildDocument assembles the full ranked document.
func BuildDocument(articleRepo ArticleRepository, metaRepo MetadataRepository) (*Document, error) {
	meta, err := metaRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	articles, err := articleRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}
	if articles == nil {
		articles = []feed.Article{}
	}

	return &Document{Metadata: *meta, Articles: articles}, nil
}

// BuildCategoryDocument assembles the document scoped to one
// category. Uncategorized articles only ever appear in the main
// document.
func BuildCategoryDocument(articleRepo ArticleRepository, metaRepo MetadataRepository, category string) (*Document, error) {
	meta, err := metaRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}

	articles, err := articleRepo.GetByCategory(category)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []feed.Article{}
	}

	meta.TotalArticles = len(articles)

	return &Document{Metadata: *meta, Articles: articles}, nil
}
