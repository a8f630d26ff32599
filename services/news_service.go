package services

import (
	"context"
	"log/slog"
	"strings"

	"newsdesk/domain"
	"newsdesk/news"
)

const searchLimit = 20

type INewsService interface {
	List() []domain.Article
	Search(ctx context.Context, term string) (SearchResult, error)
}

// SearchResult carries either matching articles or, when the search term is
// the secret keyword, the chat-entry marker. The keyword itself never
// appears in results and is never logged.
type SearchResult struct {
	Articles  []domain.Article
	ChatEntry bool
}

type NewsService struct {
	catalog       *news.Catalog
	index         *news.Index
	secretKeyword string
	log           *slog.Logger
}

func NewNewsService(catalog *news.Catalog, index *news.Index,
	secretKeyword string, log *slog.Logger) *NewsService {
	return &NewsService{catalog: catalog, index: index, secretKeyword: secretKeyword, log: log}
}

func (s *NewsService) List() []domain.Article {
	return s.catalog.All()
}

// Search runs a full-text search over the catalogue. An empty term returns
// the whole feed; the secret keyword returns the chat-entry marker instead
// of results, with no visual difference from an empty search on the wire.
func (s *NewsService) Search(ctx context.Context, term string) (SearchResult, error) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return SearchResult{Articles: s.catalog.All()}, nil
	}
	if s.secretKeyword != "" && trimmed == s.secretKeyword {
		return SearchResult{ChatEntry: true}, nil
	}

	articles, err := s.index.Search(ctx, trimmed, searchLimit)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Articles: articles}, nil
}
