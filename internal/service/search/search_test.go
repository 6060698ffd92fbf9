package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/require"

	"github.com/sweetshop/backend/internal/models"
)

func newStubES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestSearchParsesHits(t *testing.T) {
	client := newStubES(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sweets/_search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"hits":{"total":{"value":2},"hits":[`+
			`{"_source":{"id":1,"name":"Lollipop","category":"Hard Candy","price":1.5,"quantity":100}},`+
			`{"_source":{"id":2,"name":"Jelly Beans","category":"Gummies","price":2.75,"quantity":40}}]}}`)
	})

	total, sweets, err := Search(context.Background(), client, "sweets", "lollipop", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, sweets, 2)
	require.Equal(t, "Lollipop", sweets[0].Name)
	require.Equal(t, 100, sweets[0].Quantity)
}

func TestSearchErrorStatus(t *testing.T) {
	client := newStubES(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, _, err := Search(context.Background(), client, "sweets", "lollipop", 0, 10)
	require.Error(t, err)
}

func TestIndexerIndexesDocument(t *testing.T) {
	client := newStubES(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/sweets/_doc/3", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "Caramel")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"result":"created"}`)
	})

	ix := &Indexer{ES: client, Index: "sweets"}
	sweet := models.Sweet{ID: 3, Name: "Caramel", Category: "Caramel", Price: 2.00, Quantity: 60}
	require.NoError(t, ix.IndexSweet(context.Background(), &sweet))
}

func TestIndexerDeleteToleratesMissingDocument(t *testing.T) {
	client := newStubES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"result":"not_found"}`)
	})

	ix := &Indexer{ES: client, Index: "sweets"}
	require.NoError(t, ix.DeleteSweet(context.Background(), 99))
}

func TestNilIndexerIsNoop(t *testing.T) {
	var ix *Indexer
	require.NoError(t, ix.IndexSweet(context.Background(), &models.Sweet{ID: 1}))
	require.NoError(t, ix.DeleteSweet(context.Background(), 1))
}
