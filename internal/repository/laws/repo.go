// Package laws stores and searches the law document index.
package laws

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lexhaus/lexchat/internal/db"
	"github.com/lexhaus/lexchat/internal/domain"
	"github.com/lexhaus/lexchat/internal/domain/search/filter"
)

const tagSeparator = ","

// store is the consumer interface for law index operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig tunes the vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo provides KNN retrieval over the law index.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a law index repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// WithHNSW overrides the HNSW build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

func indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, domain.LawsCollection)
}

func keyPrefix() string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, domain.LawsCollection)
}

// EnsureIndex creates the law FT index if it does not exist yet. The
// schema is fixed: it mirrors the attribute schema declared to the
// self-query analyzer plus the document vector.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("check laws index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName(),
		Prefixes: []string{keyPrefix()},
		Fields: []db.IndexField{
			{Name: "abbreviation", Type: db.IndexFieldTag},
			{Name: "title", Type: db.IndexFieldText},
			{Name: "text", Type: db.IndexFieldText},
			{Name: "seq", Type: db.IndexFieldNumeric},
			{Name: "tags", Type: db.IndexFieldTag, TagSeparator: tagSeparator},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && err != db.ErrIndexExists {
		return fmt.Errorf("create laws index: %w", err)
	}
	return nil
}

// SearchKNN returns up to topK law documents by descending similarity,
// pre-filtered by the given expression.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, topK int,
) ([]domain.Document, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(),
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"abbreviation", "title", "text", "seq", "tags", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search laws: %w", err)
	}

	return parseResults(sr), nil
}

// parseResults converts flat hash fields into documents. Text is the only
// required field; malformed metadata degrades field-by-field.
func parseResults(sr *db.SearchResult) []domain.Document {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	docs := make([]domain.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		doc := domain.Document{
			Abbreviation: entry.Fields["abbreviation"],
			Title:        entry.Fields["title"],
			Text:         entry.Fields["text"],
			Score:        entry.Score,
		}
		if doc.Text == "" {
			continue
		}
		if seqStr := entry.Fields["seq"]; seqStr != "" {
			if seq, err := strconv.ParseFloat(seqStr, 64); err == nil {
				doc.Seq = seq
			}
		}
		doc.Tags = splitTags(entry.Fields["tags"])
		docs = append(docs, doc)
	}
	return docs
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, tagSeparator)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
