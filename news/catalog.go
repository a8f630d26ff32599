// Package news holds the public news feed: an embedded article catalogue
// and a full-text index over it.
package news

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"newsdesk/domain"
)

//go:embed articles.json
var articlesJSON []byte

// Catalog is the in-memory article list, in published order (newest first).
type Catalog struct {
	articles []domain.Article
	byID     map[string]domain.Article
}

func LoadCatalog() (*Catalog, error) {
	var articles []domain.Article
	if err := json.Unmarshal(articlesJSON, &articles); err != nil {
		return nil, fmt.Errorf("embedded article catalogue is invalid: %w", err)
	}

	byID := make(map[string]domain.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	return &Catalog{articles: articles, byID: byID}, nil
}

func (c *Catalog) All() []domain.Article {
	return c.articles
}

func (c *Catalog) ByID(id string) (domain.Article, bool) {
	a, ok := c.byID[id]
	return a, ok
}
