// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact stores the per-query outputs of each pipeline stage.
//
// Stages treat the store as compute-once: when an artifact is present it is
// loaded instead of recomputed. There is no staleness check against the
// inputs that produced it; callers that want fresh output pass a refresh
// flag and overwrite the entry.
package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/outline-engine/pkg/types"
)

// Kind names one stage output.
type Kind string

const (
	KindPapers      Kind = "papers"
	KindEmbeddings  Kind = "embeddings"
	KindClusters    Kind = "cluster"
	KindLabelled    Kind = "clusters_with_subtopics"
	KindOutline     Kind = "outline"
	KindOutlineYAML Kind = "outline_yaml"
)

// Kinds lists every artifact kind in pipeline order.
var Kinds = []Kind{KindPapers, KindEmbeddings, KindClusters, KindLabelled, KindOutline, KindOutlineYAML}

var suffixes = map[Kind]string{
	KindPapers:      ".jsonl",
	KindEmbeddings:  "_embeddings.gob",
	KindClusters:    "_cluster.json",
	KindLabelled:    "_clusters_with_subtopics.json",
	KindOutline:     "_outline.json",
	KindOutlineYAML: "_outline.yaml",
}

// Key identifies an artifact by query and kind.
type Key struct {
	Query string
	Kind  Kind
}

// FileName returns the artifact's file name in the on-disk layout.
func (k Key) FileName() string {
	return k.Query + suffixes[k.Kind]
}

// Validate rejects keys that cannot be mapped to a file under the output directory.
func (k Key) Validate() error {
	if strings.TrimSpace(k.Query) == "" {
		return fmt.Errorf("artifact key has an empty query")
	}
	if strings.ContainsAny(k.Query, `/\`) || k.Query == "." || k.Query == ".." {
		return fmt.Errorf("query %q cannot be used as a directory name", k.Query)
	}
	if _, ok := suffixes[k.Kind]; !ok {
		return fmt.Errorf("unknown artifact kind %q", k.Kind)
	}
	return nil
}

// Store reads and writes artifacts by key.
type Store interface {
	// Get returns the artifact bytes and true, or false when absent.
	Get(ctx context.Context, key Key) ([]byte, bool, error)

	// Put stores data under key, replacing any previous artifact.
	Put(ctx context.Context, key Key, data []byte) error

	// Location describes where key lives, for log messages.
	Location(key Key) string

	Close() error
}

// Open returns the store selected by cfg.Backend.
func Open(cfg types.StoreConfig) (Store, error) {
	dir := cfg.OutputDir
	if dir == "" {
		dir = "Data"
	}
	switch cfg.Backend {
	case types.StoreFiles, "":
		return NewFileStore(dir), nil
	case types.StoreSQLite:
		return NewSQLiteStore(dir, NewFileStore(dir))
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
