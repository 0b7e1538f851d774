// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed turns fetched paper records into embedding vectors.
//
// Records are normalized and deduplicated by title, embedded in a single
// batched request, and persisted in input order. The embedding API is
// assumed to return vectors in the order of its inputs; a count mismatch
// is treated as a failure.
package embed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/fetch"
	"github.com/pdiddy/outline-engine/internal/logging"
	"github.com/pdiddy/outline-engine/pkg/types"
)

var (
	// ErrNoValidPapers is returned when no record survives normalization.
	ErrNoValidPapers = errors.New("no valid papers found for embedding")

	// ErrVectorCount is returned when the API returns a different number of
	// vectors than texts sent.
	ErrVectorCount = errors.New("embedding count does not match input count")
)

// Generator embeds papers through an eino embedder.
type Generator struct {
	embedder embedding.Embedder
	log      *zap.Logger
}

// NewGenerator returns a Generator using e.
func NewGenerator(e embedding.Embedder, log *zap.Logger) *Generator {
	return &Generator{embedder: e, log: logging.OrNop(log)}
}

// SelectPapers normalizes raw records and drops the ones that cannot be
// embedded: non-objects, and records whose title or abstract is not a
// string after list-valued titles are joined. Duplicates by normalized
// title are dropped; the first occurrence wins.
func SelectPapers(records []json.RawMessage, log *zap.Logger) []types.Paper {
	log = logging.OrNop(log)
	seen := make(map[string]bool)
	var papers []types.Paper

	for idx, raw := range records {
		p, err := normalizeRecord(raw)
		if err != nil {
			log.Info("skipping paper", zap.Int("index", idx), zap.Error(err))
			continue
		}
		key := TitleKey(p.Title)
		if seen[key] {
			log.Debug("skipping duplicate title", zap.Int("index", idx), zap.String("title", p.Title))
			continue
		}
		seen[key] = true
		papers = append(papers, p)
	}
	return papers
}

// TitleKey is the identity used for deduplication: lowercase, trimmed title.
func TitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// EmbeddingText renders the text sent to the embedding model for p.
func EmbeddingText(p types.Paper) string {
	return fmt.Sprintf("Title: %s ; Abstract: %s", strings.TrimSpace(p.Title), strings.TrimSpace(p.Abstract))
}

func normalizeRecord(raw json.RawMessage) (types.Paper, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return types.Paper{}, fmt.Errorf("record is not an object")
	}

	title, ok := types.TitleFromJSON(fields["title"])
	if !ok {
		return types.Paper{}, fmt.Errorf("invalid or missing title: %s", fields["title"])
	}
	abstractRaw := fields["abstract"]
	var abstract string
	if len(abstractRaw) == 0 || string(abstractRaw) == "null" || json.Unmarshal(abstractRaw, &abstract) != nil {
		return types.Paper{}, fmt.Errorf("invalid or missing abstract for %q", title)
	}
	var link string
	if raw, ok := fields["link"]; ok {
		_ = json.Unmarshal(raw, &link)
	}

	return types.Paper{
		Title:    title,
		Abstract: abstract,
		Year:     types.ScalarString(fields["year"]),
		Link:     link,
	}, nil
}

// Generate embeds the valid, unique papers among records in one request.
// Nothing is returned on failure; there is no partial result.
func (g *Generator) Generate(ctx context.Context, records []json.RawMessage) ([]types.EmbeddingRecord, error) {
	papers := SelectPapers(records, g.log)
	if len(papers) == 0 {
		g.log.Warn("no valid papers found for embedding", zap.Int("records", len(records)))
		return nil, ErrNoValidPapers
	}

	texts := make([]string, len(papers))
	for i, p := range papers {
		texts[i] = EmbeddingText(p)
	}

	vectors, err := g.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		g.log.Error("embedding request failed", zap.Int("texts", len(texts)), zap.Error(err))
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		g.log.Error("embedding count mismatch", zap.Int("texts", len(texts)), zap.Int("vectors", len(vectors)))
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrVectorCount, len(texts), len(vectors))
	}

	out := make([]types.EmbeddingRecord, len(papers))
	for i, p := range papers {
		out[i] = types.EmbeddingRecord{
			Title:    p.Title,
			Abstract: p.Abstract,
			Link:     p.Link,
			Vector:   toFloat32(vectors[i]),
		}
	}
	return out, nil
}

// Run loads the fetched papers for query, embeds them and saves the
// embeddings artifact. Progress lines go to w.
func (g *Generator) Run(ctx context.Context, store artifact.Store, query string, w io.Writer) ([]types.EmbeddingRecord, error) {
	records, ok, err := fetch.Load(ctx, store, query)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no fetched papers for %q at %s: run fetch first", query,
			store.Location(artifact.Key{Query: query, Kind: artifact.KindPapers}))
	}
	g.log.Info("loaded papers", zap.String("query", query), zap.Int("records", len(records)))

	out, err := g.Generate(ctx, records)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Found %d valid papers about %s for embedding\n", len(out), query)

	key := artifact.Key{Query: query, Kind: artifact.KindEmbeddings}
	if err := artifact.SaveGob(ctx, store, key, out); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Text embedding done, saved to %s\n", store.Location(key))
	return out, nil
}

// Load reads the embeddings artifact for query.
func Load(ctx context.Context, store artifact.Store, query string) ([]types.EmbeddingRecord, bool, error) {
	var out []types.EmbeddingRecord
	ok, err := artifact.LoadGob(ctx, store, artifact.Key{Query: query, Kind: artifact.KindEmbeddings}, &out)
	return out, ok, err
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
