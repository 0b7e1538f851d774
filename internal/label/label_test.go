// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package label

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/llm"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// scriptedChat replays responses in order and records every user message.
type scriptedChat struct {
	responses []string
	errs      []error
	calls     []string
	systems   []string
}

func (s *scriptedChat) Complete(_ context.Context, system, user string) (string, error) {
	i := len(s.calls)
	s.calls = append(s.calls, user)
	s.systems = append(s.systems, system)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i >= len(s.responses) {
		return "", fmt.Errorf("unexpected call %d", i)
	}
	return s.responses[i], nil
}

func makePapers(n int) []types.Paper {
	out := make([]types.Paper, n)
	for i := range out {
		out[i] = types.Paper{Title: fmt.Sprintf("T%d", i), Abstract: fmt.Sprintf("A%d", i)}
	}
	return out
}

func clusterSet(sizes map[string]int, order ...string) *types.ClusterSet {
	set := types.NewClusterSet()
	for _, id := range order {
		set.Set(id, makePapers(sizes[id]))
	}
	return set
}

const relatedOrbits = `{"Description": "Orbit studies.", "Subtopic": "Orbits", "Relatedness": 4, "Is Related": "RELATED"}`

func TestLabel_SmallClusterRemovedWithoutCall(t *testing.T) {
	chat := &scriptedChat{}
	l := New(chat, "near-earth asteroids", types.LabelConfig{})

	out, err := l.Label(context.Background(), clusterSet(map[string]int{"3": 2}, "3"))
	require.NoError(t, err)

	got, ok := out.Get("3")
	require.True(t, ok)
	assert.True(t, got.Outcome.IsRemoved())
	assert.Len(t, got.Papers, 2)
	assert.Empty(t, chat.calls)
}

func TestLabel_ThresholdIsInclusive(t *testing.T) {
	chat := &scriptedChat{responses: []string{relatedOrbits}}
	l := New(chat, "q", types.LabelConfig{})

	out, err := l.Label(context.Background(), clusterSet(map[string]int{"a": 3, "b": 4}, "a", "b"))
	require.NoError(t, err)

	a, _ := out.Get("a")
	b, _ := out.Get("b")
	assert.True(t, a.Outcome.IsRemoved())
	assert.False(t, b.Outcome.IsRemoved())
	assert.Len(t, chat.calls, 1)
}

func TestLabel_SingleChunkRelated(t *testing.T) {
	chat := &scriptedChat{responses: []string{"```json\n" + relatedOrbits + "\n```"}}
	l := New(chat, "near-earth asteroids", types.LabelConfig{ChunkSize: 30})

	out, err := l.Label(context.Background(), clusterSet(map[string]int{"5": 10}, "5"))
	require.NoError(t, err)
	require.Len(t, chat.calls, 1)

	got, _ := out.Get("5")
	info, ok := got.Outcome.Subtopic()
	require.True(t, ok)
	assert.Equal(t, types.Relatedness(4), info.Relatedness)
	assert.Equal(t, types.LabelRelated, info.IsRelated)
	assert.Equal(t, "Orbits", info.Subtopic)

	assert.Equal(t, systemPrompt, chat.systems[0])
	assert.True(t, strings.HasPrefix(chat.calls[0], "Topic: near-earth asteroids\nPapers: \n0: T0\nAbstract: A0\n1: T1"))
	assert.True(t, strings.HasSuffix(chat.calls[0], "\n9: T9\nAbstract: A9"))
}

func TestLabel_ChunksAndMerge(t *testing.T) {
	chat := &scriptedChat{responses: []string{
		`{"Description": "First.", "Subtopic": "Orbits", "Relatedness": "3", "Is Related": "related"}`,
		`{"Description": "Off topic.", "Subtopic": "Comets", "Relatedness": 1, "Is Related": "NOT RELATED"}`,
		`{"Description": "Third.", "Subtopic": "Spin", "Relatedness": 5, "Is Related": "RELATED"}`,
	}}
	l := New(chat, "q", types.LabelConfig{ChunkSize: 4})

	out, err := l.Label(context.Background(), clusterSet(map[string]int{"7": 10}, "7"))
	require.NoError(t, err)
	require.Len(t, chat.calls, 3)

	// The last chunk holds papers 8 and 9, renumbered from zero.
	assert.Contains(t, chat.calls[2], "\n0: T8\n")
	assert.Contains(t, chat.calls[2], "\n1: T9\n")

	got, _ := out.Get("7")
	info, ok := got.Outcome.Subtopic()
	require.True(t, ok)
	assert.Equal(t, types.SubtopicInfo{
		Description: "First. Third.",
		Subtopic:    "Orbits, Spin",
		Relatedness: 5,
		IsRelated:   types.LabelRelated,
	}, info)
}

func TestLabel_FailedChunksDropped(t *testing.T) {
	tests := []struct {
		name      string
		responses []string
		errs      []error
	}{
		{"all not related", []string{`{"Is Related": "NOT RELATED"}`}, nil},
		{"invalid json", []string{"I cannot help with that."}, nil},
		{"chat error", []string{""}, []error{errors.New("rate limited")}},
		{"missing is related", []string{`{"Subtopic": "x"}`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &scriptedChat{responses: tt.responses, errs: tt.errs}
			l := New(chat, "q", types.LabelConfig{})

			out, err := l.Label(context.Background(), clusterSet(map[string]int{"1": 5}, "1"))
			require.NoError(t, err)
			got, _ := out.Get("1")
			assert.True(t, got.Outcome.IsRemoved())
		})
	}
}

func TestLabel_PreservesOrderAndReportsProgress(t *testing.T) {
	chat := &scriptedChat{responses: []string{relatedOrbits, relatedOrbits}}
	var updates []string
	l := New(chat, "q", types.LabelConfig{}, WithProgress(ProgressFunc(func(p, total int) {
		updates = append(updates, fmt.Sprintf("%d/%d", p, total))
	})))

	set := clusterSet(map[string]int{"9": 5, "0": 1, "4": 6}, "9", "0", "4")
	out, err := l.Label(context.Background(), set)
	require.NoError(t, err)

	var keys []string
	for pair := out.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"9", "0", "4"}, keys)
	assert.Equal(t, []string{"1/3", "2/3", "3/3"}, updates)
}

func TestLabel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New(&scriptedChat{}, "q", types.LabelConfig{})

	_, err := l.Label(ctx, clusterSet(map[string]int{"1": 5}, "1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLabel_CancelledDuringLastCluster(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	chat := llm.ChatFunc(func(ctx context.Context, _, _ string) (string, error) {
		calls++
		if calls == 2 {
			cancel()
			return "", ctx.Err()
		}
		return relatedOrbits, nil
	})
	l := New(chat, "q", types.LabelConfig{})

	out, err := l.Label(ctx, clusterSet(map[string]int{"1": 5, "2": 5}, "1", "2"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

func TestNameClusters_CancelledSavesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := artifact.NewFileStore(t.TempDir())
	chat := llm.ChatFunc(func(ctx context.Context, _, _ string) (string, error) {
		cancel()
		return "", ctx.Err()
	})
	l := New(chat, "q", types.LabelConfig{})

	_, err := l.NameClusters(ctx, store, clusterSet(map[string]int{"1": 5}, "1"), false)
	require.ErrorIs(t, err, context.Canceled)

	_, ok, err := LoadLabelled(context.Background(), store, "q")
	require.NoError(t, err)
	assert.False(t, ok, "no labelled artifact after cancellation")
}

func TestChunkPapers(t *testing.T) {
	assert.Len(t, chunkPapers(makePapers(30), 30), 1)
	assert.Len(t, chunkPapers(makePapers(31), 30), 2)
	assert.Empty(t, chunkPapers(nil, 30))

	chunks := chunkPapers(makePapers(7), 3)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 1)
	assert.Equal(t, "T6", chunks[2][0].Title)
}

func TestMerge_SingleChunk(t *testing.T) {
	info := types.SubtopicInfo{Description: "d", Subtopic: "s", Relatedness: 2, IsRelated: "Related"}
	got := Merge([]types.SubtopicInfo{info})
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, "s", got.Subtopic)
	assert.Equal(t, types.Relatedness(2), got.Relatedness)
	assert.Equal(t, types.LabelRelated, got.IsRelated)
}

func TestMerge_KeepsFractionalMaximum(t *testing.T) {
	got := Merge([]types.SubtopicInfo{
		{Description: "a", Subtopic: "A", Relatedness: 4.4, IsRelated: types.LabelRelated},
		{Description: "b", Subtopic: "B", Relatedness: 4.5, IsRelated: types.LabelRelated},
	})
	assert.Equal(t, types.Relatedness(4.5), got.Relatedness)
}

func TestNameClusters_ComputeOnce(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewFileStore(t.TempDir())
	clusters := clusterSet(map[string]int{"5": 10}, "5")

	chat := &scriptedChat{responses: []string{relatedOrbits, relatedOrbits}}
	l := New(chat, "near-earth asteroids", types.LabelConfig{})

	first, err := l.NameClusters(ctx, store, clusters, false)
	require.NoError(t, err)
	require.Len(t, chat.calls, 1)

	second, err := l.NameClusters(ctx, store, clusters, false)
	require.NoError(t, err)
	assert.Len(t, chat.calls, 1, "stored artifact is reused")

	a, _ := first.Get("5")
	b, _ := second.Get("5")
	assert.Equal(t, a, b)

	_, err = l.NameClusters(ctx, store, clusters, true)
	require.NoError(t, err)
	assert.Len(t, chat.calls, 2, "refresh recomputes")

	loaded, ok, err := LoadLabelled(ctx, store, "near-earth asteroids")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, loaded.Len())
}

func TestLoadClusters(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewFileStore(t.TempDir())
	key := artifact.Key{Query: "q", Kind: artifact.KindClusters}

	_, err := LoadClusters(ctx, store, "q")
	assert.ErrorContains(t, err, "cluster file not found")

	require.NoError(t, store.Put(ctx, key, []byte(`{"2": [{"title": ["A", "B"], "abstract": "x"}], "1": []}`)))
	set, err := LoadClusters(ctx, store, "q")
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "2", set.Oldest().Key)
	papers, _ := set.Get("2")
	assert.Equal(t, "A B", papers[0].Title)
}

func TestWriterProgressAndSummary(t *testing.T) {
	var buf bytes.Buffer
	WriterProgress(&buf, "q").Update(2, 5)
	assert.Equal(t, "Generating q subtopics: 2/5 clusters\n", buf.String())

	set := types.NewLabelledSet()
	set.Set("1", types.LabelledCluster{Outcome: types.Removed()})
	set.Set("2", types.LabelledCluster{Outcome: types.Labelled(types.SubtopicInfo{Subtopic: "s"})})
	buf.Reset()
	Summary(&buf, set)
	assert.Equal(t, "Labelled 1 clusters, removed 1\n", buf.String())
}
