package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/sweetshop/backend/internal/models"
)

// Indexer mirrors catalog mutations into the search index. A nil
// Indexer (or one without a client) is a no-op, so the catalog works
// without Elasticsearch configured.
type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func (ix *Indexer) IndexSweet(ctx context.Context, sweet *models.Sweet) error {
	if ix == nil || ix.ES == nil {
		return nil
	}

	body, err := json.Marshal(sweet)
	if err != nil {
		return fmt.Errorf("index: encode sweet: %w", err)
	}

	res, err := ix.ES.Index(
		ix.Index,
		bytes.NewReader(body),
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(strconv.Itoa(int(sweet.ID))),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index: %s", res.Status())
	}
	return nil
}

func (ix *Indexer) DeleteSweet(ctx context.Context, id uint) error {
	if ix == nil || ix.ES == nil {
		return nil
	}

	res, err := ix.ES.Delete(
		ix.Index,
		strconv.Itoa(int(id)),
		ix.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("index delete: %s", res.Status())
	}
	return nil
}
