// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/fetch"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// fakeEmbedder returns one vector per text whose first element is the text
// length, so tests can tell which text a vector belongs to.
type fakeEmbedder struct {
	texts [][]string
	err   error
	short bool
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.texts = append(f.texts, texts)
	if f.err != nil {
		return nil, f.err
	}
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float64, n)
	for i := range out {
		out[i] = []float64{float64(len(texts[i])), 0.5}
	}
	return out, nil
}

func raws(lines ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(lines))
	for i, l := range lines {
		out[i] = json.RawMessage(l)
	}
	return out
}

func TestSelectPapers(t *testing.T) {
	records := raws(
		`{"title": "Orbits", "abstract": "About orbits.", "year": 2020, "link": "https://x/1"}`,
		`{"title": ["Near-Earth", "Asteroids"], "abstract": "NEAs."}`,
		`{"title": "  orbits ", "abstract": "Duplicate, different case."}`,
		`{"title": 7, "abstract": "bad title"}`,
		`{"title": "No abstract"}`,
		`{"title": "Null abstract", "abstract": null}`,
		`["not", "an", "object"]`,
		`"string record"`,
	)

	got := SelectPapers(records, nil)
	require.Len(t, got, 2)
	assert.Equal(t, types.Paper{Title: "Orbits", Abstract: "About orbits.", Year: "2020", Link: "https://x/1"}, got[0])
	assert.Equal(t, "Near-Earth Asteroids", got[1].Title)
	assert.Empty(t, got[1].Link)
}

func TestEmbeddingText(t *testing.T) {
	p := types.Paper{Title: "  Orbits\n", Abstract: " About orbits. "}
	assert.Equal(t, "Title: Orbits ; Abstract: About orbits.", EmbeddingText(p))
}

func TestGenerate(t *testing.T) {
	fe := &fakeEmbedder{}
	g := NewGenerator(fe, nil)

	out, err := g.Generate(context.Background(), raws(
		`{"title": "A", "abstract": "aa", "link": "l"}`,
		`{"title": "a", "abstract": "dup"}`,
		`{"title": "Bee", "abstract": "bbbb"}`,
	))
	require.NoError(t, err)

	require.Len(t, fe.texts, 1, "one batched request")
	assert.Equal(t, []string{"Title: A ; Abstract: aa", "Title: Bee ; Abstract: bbbb"}, fe.texts[0])

	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "l", out[0].Link)
	assert.Equal(t, []float32{float32(len(fe.texts[0][0])), 0.5}, out[0].Vector)
	assert.Equal(t, float32(len(fe.texts[0][1])), out[1].Vector[0])
}

func TestGenerate_NoValidPapers(t *testing.T) {
	fe := &fakeEmbedder{}
	g := NewGenerator(fe, nil)

	_, err := g.Generate(context.Background(), raws(`{"title": 1}`, `[]`))
	assert.ErrorIs(t, err, ErrNoValidPapers)
	assert.Empty(t, fe.texts, "no request when nothing is valid")
}

func TestGenerate_Failures(t *testing.T) {
	records := raws(`{"title": "A", "abstract": "a"}`, `{"title": "B", "abstract": "b"}`)

	t.Run("api error", func(t *testing.T) {
		g := NewGenerator(&fakeEmbedder{err: errors.New("quota exceeded")}, nil)
		out, err := g.Generate(context.Background(), records)
		assert.Nil(t, out)
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("count mismatch", func(t *testing.T) {
		g := NewGenerator(&fakeEmbedder{short: true}, nil)
		out, err := g.Generate(context.Background(), records)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrVectorCount)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	store := artifact.NewFileStore(t.TempDir())
	query := "near-earth asteroids"

	require.NoError(t, fetch.Save(ctx, store, query, raws(
		`{"title": "Orbits", "abstract": "About orbits."}`,
		`{"title": "Spin", "abstract": "About spin."}`,
	)))

	var buf bytes.Buffer
	g := NewGenerator(&fakeEmbedder{}, nil)
	out, err := g.Run(ctx, store, query, &buf)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Contains(t, buf.String(), "Found 2 valid papers about near-earth asteroids")

	loaded, ok, err := Load(ctx, store, query)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, out, loaded)
}

func TestRun_MissingPapers(t *testing.T) {
	store := artifact.NewFileStore(t.TempDir())
	g := NewGenerator(&fakeEmbedder{}, nil)

	_, err := g.Run(context.Background(), store, "nothing", &bytes.Buffer{})
	assert.ErrorContains(t, err, "run fetch first")
}

func TestNewOpenAIEmbedder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(context.Background(), types.EmbeddingConfig{Model: "m"})
	assert.Error(t, err)
}
