// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package label names clusters of papers with a subtopic by asking a chat
// model about each cluster, chunk by chunk.
//
// A cluster with too few papers is removed without a chat call. Larger
// clusters are split into chunks; each chunk that the model marks RELATED
// contributes to the cluster's merged label. A cluster with no contributing
// chunk is removed.
package label

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/llm"
	"github.com/pdiddy/outline-engine/internal/logging"
	"github.com/pdiddy/outline-engine/pkg/types"
)

const (
	defaultChunkSize      = 30
	defaultMinClusterSize = 3
)

// Labeller assigns a ClusterOutcome to every cluster of a ClusterSet.
type Labeller struct {
	chat           llm.ChatModel
	query          string
	chunkSize      int
	minClusterSize int
	log            *zap.Logger
	progress       Progress
}

// Option configures a Labeller.
type Option func(*Labeller)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Labeller) { l.log = logging.OrNop(log) }
}

// WithProgress sets the sink that is told after every cluster.
func WithProgress(p Progress) Option {
	return func(l *Labeller) {
		if p != nil {
			l.progress = p
		}
	}
}

// New returns a Labeller for query. Non-positive sizes in cfg fall back to
// the defaults (chunks of 30, clusters of 3 or fewer removed).
func New(chat llm.ChatModel, query string, cfg types.LabelConfig, opts ...Option) *Labeller {
	l := &Labeller{
		chat:           chat,
		query:          query,
		chunkSize:      cfg.ChunkSize,
		minClusterSize: cfg.MinClusterSize,
		log:            zap.NewNop(),
		progress:       nopProgress{},
	}
	if l.chunkSize <= 0 {
		l.chunkSize = defaultChunkSize
	}
	if l.minClusterSize <= 0 {
		l.minClusterSize = defaultMinClusterSize
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Label labels every cluster in order. Per-chunk chat or parse failures are
// logged and drop the chunk. Context cancellation, including during a
// cluster's chat calls, aborts the run with no result.
func (l *Labeller) Label(ctx context.Context, clusters *types.ClusterSet) (*types.LabelledSet, error) {
	out := types.NewLabelledSet()
	total := clusters.Len()
	processed := 0

	for pair := clusters.Oldest(); pair != nil; pair = pair.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, papers := pair.Key, pair.Value

		outcome := l.labelCluster(ctx, id, papers)
		// Cancellation during a chat call surfaces as a dropped chunk.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Set(id, types.LabelledCluster{Outcome: outcome, Papers: papers})

		processed++
		l.progress.Update(processed, total)
	}
	return out, nil
}

func (l *Labeller) labelCluster(ctx context.Context, id string, papers []types.Paper) types.ClusterOutcome {
	log := l.log.With(zap.String("cluster", id), zap.Int("papers", len(papers)))
	if len(papers) <= l.minClusterSize {
		log.Info("cluster skipped due to insufficient papers")
		return types.Removed()
	}
	log.Info("processing cluster")

	var related []types.SubtopicInfo
	for i, chunk := range chunkPapers(papers, l.chunkSize) {
		chunkLog := log.With(zap.Int("chunk", i+1))
		info, err := l.labelChunk(ctx, chunk)
		if err != nil {
			chunkLog.Warn("chunk dropped", zap.Error(err))
			continue
		}
		if !strings.EqualFold(info.IsRelated, types.LabelRelated) {
			chunkLog.Info("chunk marked NOT RELATED", zap.String("is_related", info.IsRelated))
			continue
		}
		chunkLog.Info("chunk marked RELATED", zap.String("subtopic", info.Subtopic))
		related = append(related, info)
	}

	if len(related) == 0 {
		log.Info("cluster removed, no related chunk")
		return types.Removed()
	}
	merged := Merge(related)
	log.Info("cluster labelled", zap.String("subtopic", merged.Subtopic), zap.Float64("relatedness", float64(merged.Relatedness)))
	return types.Labelled(merged)
}

func (l *Labeller) labelChunk(ctx context.Context, chunk []types.Paper) (types.SubtopicInfo, error) {
	user, err := renderChunk(l.query, chunk)
	if err != nil {
		return types.SubtopicInfo{}, err
	}
	resp, err := l.chat.Complete(ctx, systemPrompt, user)
	if err != nil {
		return types.SubtopicInfo{}, fmt.Errorf("chat request: %w", err)
	}
	l.log.Debug("chunk response", zap.String("content", resp))
	return parseChunk(resp)
}

// parseChunk decodes a chunk response after removing any code fence.
func parseChunk(resp string) (types.SubtopicInfo, error) {
	cleaned := llm.StripCodeFence(resp)
	var info types.SubtopicInfo
	if err := json.Unmarshal([]byte(cleaned), &info); err != nil {
		return types.SubtopicInfo{}, fmt.Errorf("invalid JSON response %q: %w", truncate(cleaned, 200), err)
	}
	return info, nil
}

// Merge combines the related chunk labels of one cluster. Descriptions are
// joined with spaces and subtopic titles with ", "; the highest relatedness
// wins. The result is always RELATED.
func Merge(infos []types.SubtopicInfo) types.SubtopicInfo {
	descriptions := make([]string, len(infos))
	subtopics := make([]string, len(infos))
	var best types.Relatedness
	for i, info := range infos {
		descriptions[i] = info.Description
		subtopics[i] = info.Subtopic
		if i == 0 || info.Relatedness > best {
			best = info.Relatedness
		}
	}
	return types.SubtopicInfo{
		Description: strings.Join(descriptions, " "),
		Subtopic:    strings.Join(subtopics, ", "),
		Relatedness: best,
		IsRelated:   types.LabelRelated,
	}
}

// chunkPapers splits papers into consecutive slices of at most size.
func chunkPapers(papers []types.Paper, size int) [][]types.Paper {
	var chunks [][]types.Paper
	for start := 0; start < len(papers); start += size {
		end := min(start+size, len(papers))
		chunks = append(chunks, papers[start:end])
	}
	return chunks
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// NameClusters returns the labelled set for query. A stored
// clusters_with_subtopics artifact is loaded as is unless refresh is set;
// otherwise the clusters are labelled and the result saved.
func (l *Labeller) NameClusters(ctx context.Context, store artifact.Store, clusters *types.ClusterSet, refresh bool) (*types.LabelledSet, error) {
	key := artifact.Key{Query: l.query, Kind: artifact.KindLabelled}
	if !refresh {
		cached := types.NewLabelledSet()
		ok, err := artifact.LoadJSON(ctx, store, key, cached)
		if err != nil {
			return nil, err
		}
		if ok {
			l.log.Info("loaded labelled clusters", zap.String("location", store.Location(key)))
			return cached, nil
		}
	}

	labelled, err := l.Label(ctx, clusters)
	if err != nil {
		return nil, err
	}
	if err := artifact.SaveJSON(ctx, store, key, labelled); err != nil {
		return nil, err
	}
	return labelled, nil
}

// LoadClusters reads the externally produced cluster file for query.
func LoadClusters(ctx context.Context, store artifact.Store, query string) (*types.ClusterSet, error) {
	key := artifact.Key{Query: query, Kind: artifact.KindClusters}
	clusters := types.NewClusterSet()
	ok, err := artifact.LoadJSON(ctx, store, key, clusters)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("cluster file not found: %s", store.Location(key))
	}
	return clusters, nil
}

// LoadLabelled reads the labelled set for query, reporting false when absent.
func LoadLabelled(ctx context.Context, store artifact.Store, query string) (*types.LabelledSet, bool, error) {
	set := types.NewLabelledSet()
	ok, err := artifact.LoadJSON(ctx, store, artifact.Key{Query: query, Kind: artifact.KindLabelled}, set)
	if err != nil || !ok {
		return nil, ok, err
	}
	return set, true, nil
}

// Summary prints the outcome counts of set to w.
func Summary(w io.Writer, set *types.LabelledSet) {
	var labelled, removed int
	for pair := set.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Outcome.IsRemoved() {
			removed++
		} else {
			labelled++
		}
	}
	fmt.Fprintf(w, "Labelled %d clusters, removed %d\n", labelled, removed)
}
