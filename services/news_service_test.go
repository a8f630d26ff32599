package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"newsdesk/news"
)

const testKeyword = "quantum2026"

func newTestNewsService(t *testing.T) *NewsService {
	t.Helper()
	catalog, err := news.LoadCatalog()
	require.NoError(t, err)

	index, err := news.NewIndex(catalog)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return NewNewsService(catalog, index, testKeyword, slog.Default())
}

func TestNewsService_EmptyTermReturnsFullFeed(t *testing.T) {
	req := require.New(t)
	service := newTestNewsService(t)

	for _, term := range []string{"", "   ", "\t"} {
		result, err := service.Search(context.Background(), term)
		req.NoError(err)
		req.False(result.ChatEntry)
		req.Equal(service.List(), result.Articles)
	}
}

func TestNewsService_SecretKeywordYieldsChatEntry(t *testing.T) {
	req := require.New(t)
	service := newTestNewsService(t)

	result, err := service.Search(context.Background(), testKeyword)
	req.NoError(err)
	req.True(result.ChatEntry)
	req.Empty(result.Articles)

	// Surrounding whitespace does not defeat the keyword.
	result, err = service.Search(context.Background(), "  "+testKeyword+"  ")
	req.NoError(err)
	req.True(result.ChatEntry)
}

func TestNewsService_KeywordMatchIsExact(t *testing.T) {
	req := require.New(t)
	service := newTestNewsService(t)

	for _, term := range []string{"QUANTUM2026", "quantum", "quantum2026x"} {
		result, err := service.Search(context.Background(), term)
		req.NoError(err)
		req.False(result.ChatEntry, "term %q must not open the chat", term)
	}
}

func TestNewsService_OrdinarySearchHitsIndex(t *testing.T) {
	req := require.New(t)
	service := newTestNewsService(t)

	result, err := service.Search(context.Background(), "malaria vaccine")
	req.NoError(err)
	req.False(result.ChatEntry)
	req.NotEmpty(result.Articles)
	req.Contains(result.Articles[0].Title, "Malaria")
}

func TestNewsService_EmptyConfiguredKeywordNeverOpensChat(t *testing.T) {
	req := require.New(t)
	catalog, err := news.LoadCatalog()
	req.NoError(err)
	index, err := news.NewIndex(catalog)
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	service := NewNewsService(catalog, index, "", slog.Default())
	result, err := service.Search(context.Background(), "")
	req.NoError(err)
	req.False(result.ChatEntry)
}
