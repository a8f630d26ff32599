package news

import (
	"context"
	"fmt"

	"github.com/blugelabs/bluge"

	"newsdesk/domain"
)

// Index is a Bluge full-text index over the article catalogue, built
// in-memory at startup. The catalogue is static, so a single point-in-time
// reader serves all searches.
type Index struct {
	catalog *Catalog
	writer  *bluge.Writer
	reader  *bluge.Reader
}

func NewIndex(catalog *Catalog) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("opening news index: %w", err)
	}

	batch := bluge.NewBatch()
	for _, a := range catalog.All() {
		doc := bluge.NewDocument(a.ID).
			AddField(bluge.NewTextField("title", a.Title)).
			AddField(bluge.NewTextField("description", a.Description)).
			AddField(bluge.NewTextField("category", a.Category))
		batch.Update(doc.ID(), doc)
	}
	if err := writer.Batch(batch); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("indexing articles: %w", err)
	}

	reader, err := writer.Reader()
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("opening news index reader: %w", err)
	}

	return &Index{catalog: catalog, writer: writer, reader: reader}, nil
}

// Search matches the term against title, description and category and
// returns the matching articles, best match first.
func (i *Index) Search(ctx context.Context, term string, limit int) ([]domain.Article, error) {
	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(term).SetField("title")).
		AddShould(bluge.NewMatchQuery(term).SetField("description")).
		AddShould(bluge.NewMatchQuery(term).SetField("category"))

	request := bluge.NewTopNSearch(limit, query)
	iterator, err := i.reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("news search failed: %w", err)
	}

	var results []domain.Article
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("news search iteration failed: %w", err)
		}
		if match == nil {
			break
		}

		var id string
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if article, ok := i.catalog.ByID(id); ok {
			results = append(results, article)
		}
	}
	return results, nil
}

func (i *Index) Close() error {
	if err := i.reader.Close(); err != nil {
		_ = i.writer.Close()
		return err
	}
	return i.writer.Close()
}
