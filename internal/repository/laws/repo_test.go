package laws

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lexhaus/lexchat/internal/db"
	"github.com/lexhaus/lexchat/internal/domain/search/filter"
)

type mockStore struct {
	searchResult *db.SearchResult
	searchErr    error
	lastQuery    *db.KNNQuery

	indexExists  bool
	existsErr    error
	createdIndex *db.IndexDefinition
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	return m.searchResult, m.searchErr
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.createdIndex = def
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.indexExists, m.existsErr
}

func TestSearchKNN_ParsesDocuments(t *testing.T) {
	store := &mockStore{
		searchResult: &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "lexchat:laws:1",
					Score: 0.92,
					Fields: map[string]string{
						"abbreviation": "BGB",
						"title":        "Bürgerliches Gesetzbuch",
						"text":         "§ 573 Ordentliche Kündigung des Vermieters ...",
						"seq":          "573",
						"tags":         "Mietrecht,Kündigung",
					},
				},
				{
					Key:    "lexchat:laws:2",
					Score:  0.85,
					Fields: map[string]string{"text": "§ 1 ..."},
				},
			},
		},
	}
	repo := New(store, 1536)

	docs, err := repo.SearchKNN(context.Background(), []float32{0.1, 0.2}, filter.Expression{}, 5)
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}

	first := docs[0]
	if first.Abbreviation != "BGB" || first.Seq != 573 {
		t.Errorf("unexpected first doc: %+v", first)
	}
	if !reflect.DeepEqual(first.Tags, []string{"Mietrecht", "Kündigung"}) {
		t.Errorf("Tags = %v", first.Tags)
	}

	// Metadata-free document still parses: only text is required.
	second := docs[1]
	if second.Abbreviation != "" || second.Title != "" || len(second.Tags) != 0 {
		t.Errorf("expected degraded metadata, got %+v", second)
	}

	if store.lastQuery.K != 5 {
		t.Errorf("K = %d, want 5", store.lastQuery.K)
	}
	if store.lastQuery.IndexName != "lexchat:laws:idx" {
		t.Errorf("IndexName = %q", store.lastQuery.IndexName)
	}
}

func TestSearchKNN_SkipsTextlessEntries(t *testing.T) {
	store := &mockStore{
		searchResult: &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{Key: "lexchat:laws:3", Fields: map[string]string{"abbreviation": "HGB"}},
			},
		},
	}
	repo := New(store, 1536)

	docs, err := repo.SearchKNN(context.Background(), []float32{0.1}, filter.Expression{}, 5)
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected textless entry skipped, got %+v", docs)
	}
}

func TestSearchKNN_PropagatesError(t *testing.T) {
	wantErr := errors.New("connection refused")
	repo := New(&mockStore{searchErr: wantErr}, 1536)

	_, err := repo.SearchKNN(context.Background(), []float32{0.1}, filter.Expression{}, 5)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestEnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		store := &mockStore{indexExists: false}
		repo := New(store, 1536).WithHNSW(HNSWConfig{M: 32, EFConstruct: 400})

		if err := repo.EnsureIndex(context.Background()); err != nil {
			t.Fatalf("EnsureIndex: %v", err)
		}
		if store.createdIndex == nil {
			t.Fatal("expected index creation")
		}
		if store.createdIndex.Name != "lexchat:laws:idx" {
			t.Errorf("index name = %q", store.createdIndex.Name)
		}
		if got := len(store.createdIndex.Fields); got != 6 {
			t.Errorf("schema fields = %d, want 6", got)
		}
	})

	t.Run("skips existing index", func(t *testing.T) {
		store := &mockStore{indexExists: true}
		repo := New(store, 1536)

		if err := repo.EnsureIndex(context.Background()); err != nil {
			t.Fatalf("EnsureIndex: %v", err)
		}
		if store.createdIndex != nil {
			t.Error("unexpected index creation")
		}
	})
}
