// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch pages through a literature search API and persists the raw
// records as newline-delimited JSON.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/logging"
	"github.com/pdiddy/outline-engine/pkg/types"
)

const (
	defaultPageSize   = 100
	defaultMaxResults = 1000
)

// ErrMalformedResponse marks a search response that lacks the expected
// result list. Fetch treats it as the end of results rather than a failure.
var ErrMalformedResponse = errors.New("malformed search response")

// Backend fetches one page of raw records from a search API.
type Backend interface {
	Name() string

	// FetchPage returns up to rows records starting at offset start.
	FetchPage(ctx context.Context, query string, start, rows int) ([]json.RawMessage, error)

	// PageLimit is the largest page the API accepts, or 0 for no limit.
	PageLimit() int
}

// NewBackend returns the backend selected by cfg.Source.
func NewBackend(cfg types.FetchConfig, client *http.Client) (Backend, error) {
	switch cfg.Source {
	case types.SourceADS, "":
		if cfg.APIToken == "" {
			return nil, fmt.Errorf("ADS search requires an API token")
		}
		return &ADSBackend{Client: client, Token: cfg.APIToken}, nil
	case types.SourceOpenAlex:
		return &OpenAlexBackend{Client: client, Email: cfg.Email}, nil
	default:
		return nil, fmt.Errorf("unknown search source %q", cfg.Source)
	}
}

// Fetch requests fixed-size pages until maxResults records are collected, a
// page comes back short, or the response is malformed. The result is
// truncated to maxResults.
func Fetch(ctx context.Context, backend Backend, query string, maxResults, pageSize int, log *zap.Logger) ([]json.RawMessage, error) {
	log = logging.OrNop(log)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if limit := backend.PageLimit(); limit > 0 && pageSize > limit {
		pageSize = limit
	}

	var records []json.RawMessage
	for start := 0; len(records) < maxResults; start += pageSize {
		page, err := backend.FetchPage(ctx, query, start, pageSize)
		if errors.Is(err, ErrMalformedResponse) {
			log.Warn("search response missing results, stopping",
				zap.String("backend", backend.Name()), zap.Int("start", start), zap.Error(err))
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s page at %d: %w", backend.Name(), start, err)
		}
		records = append(records, page...)
		log.Debug("fetched page",
			zap.String("backend", backend.Name()), zap.Int("start", start), zap.Int("records", len(page)))

		if len(page) < pageSize {
			break
		}
	}

	if len(records) > maxResults {
		records = records[:maxResults]
	}
	return records, nil
}

// Save writes records to the papers artifact for query.
func Save(ctx context.Context, store artifact.Store, query string, records []json.RawMessage) error {
	data, err := artifact.EncodeJSONL(records)
	if err != nil {
		return fmt.Errorf("encoding papers: %w", err)
	}
	return store.Put(ctx, artifact.Key{Query: query, Kind: artifact.KindPapers}, data)
}

// Load reads the papers artifact for query. It reports false when absent.
func Load(ctx context.Context, store artifact.Store, query string) ([]json.RawMessage, bool, error) {
	data, ok, err := store.Get(ctx, artifact.Key{Query: query, Kind: artifact.KindPapers})
	if err != nil || !ok {
		return nil, false, err
	}
	records, err := artifact.DecodeJSONL(data)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// Run fetches papers for query and saves them, writing a summary line to w.
func Run(ctx context.Context, store artifact.Store, backend Backend, query string, cfg types.FetchConfig, log *zap.Logger, w io.Writer) ([]json.RawMessage, error) {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	records, err := Fetch(ctx, backend, query, maxResults, cfg.PageSize, log)
	if err != nil {
		return nil, err
	}
	if err := Save(ctx, store, query, records); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Total %d papers (saved to %s)\n", len(records),
		store.Location(artifact.Key{Query: query, Kind: artifact.KindPapers}))
	return records, nil
}
