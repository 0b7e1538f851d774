// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline groups labelled subtopics into the chapters of an outline.
//
// Related subtopics are sent to the chat model in one request. The model
// answers with a list of chapters and a flat subtopic-to-chapter assignment,
// which Parse inverts into an outline keyed by chapter title.
package outline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/internal/llm"
	"github.com/pdiddy/outline-engine/internal/logging"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// ErrInvalidOutline is returned when the model's answer is not JSON or lacks
// the clusters or subtopics key.
var ErrInvalidOutline = errors.New("invalid outline response")

// Entry is the projection of a related subtopic sent to the model.
type Entry struct {
	Subtopic    string `json:"Subtopic"`
	Description string `json:"Description"`
}

// ProposedChapter is one chapter as proposed by the model.
type ProposedChapter struct {
	ID          string
	Title       string
	Description string
}

// Response is the decoded model answer. Assignments maps subtopic id to
// chapter id in the order the model wrote them.
type Response struct {
	Chapters    []ProposedChapter
	Assignments *orderedmap.OrderedMap[string, string]
}

// FilterRelated keeps the Labelled entries marked exactly RELATED, in input
// order.
func FilterRelated(labelled *types.LabelledSet) *orderedmap.OrderedMap[string, Entry] {
	out := orderedmap.New[string, Entry]()
	for pair := labelled.Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Value.Outcome.IsRelated() {
			continue
		}
		info, _ := pair.Value.Outcome.Subtopic()
		out.Set(pair.Key, Entry{Subtopic: info.Subtopic, Description: info.Description})
	}
	return out
}

// Assembler asks a chat model to arrange subtopics into chapters.
type Assembler struct {
	chat  llm.ChatModel
	query string
	log   *zap.Logger
}

// New returns an Assembler for query.
func New(chat llm.ChatModel, query string, log *zap.Logger) *Assembler {
	return &Assembler{chat: chat, query: query, log: logging.OrNop(log)}
}

// Generate sends the related subtopics to the model and decodes its answer.
func (a *Assembler) Generate(ctx context.Context, related *orderedmap.OrderedMap[string, Entry]) (*Response, error) {
	system, err := renderSystem(a.query)
	if err != nil {
		return nil, err
	}
	user, err := renderUser(related)
	if err != nil {
		return nil, err
	}

	raw, err := a.chat.Complete(ctx, system, user)
	if err != nil {
		a.log.Error("outline request failed", zap.Error(err))
		return nil, fmt.Errorf("outline request: %w", err)
	}

	resp, err := DecodeResponse(llm.StripCodeFence(raw))
	if err != nil {
		a.log.Error("outline response rejected", zap.Error(err), zap.String("content", raw))
		return nil, err
	}
	a.log.Info("outline generated", zap.Int("chapters", len(resp.Chapters)), zap.Int("assignments", resp.Assignments.Len()))
	return resp, nil
}

// DecodeResponse parses a cleaned model answer. Chapter ids and assigned
// chapter ids are coerced to strings so 1 and "1" name the same chapter.
// Clusters may be a list of objects carrying cluster_id, or an object keyed
// by chapter id.
func DecodeResponse(content string) (*Response, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}
	clustersRaw, subtopicsRaw := top["clusters"], top["subtopics"]
	if isMissing(clustersRaw) || isMissing(subtopicsRaw) {
		return nil, fmt.Errorf("%w: response lacks clusters or subtopics", ErrInvalidOutline)
	}

	chapters, err := decodeChapters(clustersRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: clusters: %v", ErrInvalidOutline, err)
	}

	assigned := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(subtopicsRaw, assigned); err != nil {
		return nil, fmt.Errorf("%w: subtopics: %v", ErrInvalidOutline, err)
	}
	assignments := orderedmap.New[string, string]()
	for pair := assigned.Oldest(); pair != nil; pair = pair.Next() {
		assignments.Set(pair.Key, types.ScalarString(pair.Value))
	}

	return &Response{Chapters: chapters, Assignments: assignments}, nil
}

type chapterJSON struct {
	ID          json.RawMessage `json:"cluster_id"`
	Title       string          `json:"cluster_title"`
	Description string          `json:"description"`
}

func decodeChapters(raw json.RawMessage) ([]ProposedChapter, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		keyed := orderedmap.New[string, chapterJSON]()
		if err := json.Unmarshal(raw, keyed); err != nil {
			return nil, err
		}
		var out []ProposedChapter
		for pair := keyed.Oldest(); pair != nil; pair = pair.Next() {
			id := types.ScalarString(pair.Value.ID)
			if id == "" {
				id = pair.Key
			}
			out = append(out, ProposedChapter{ID: id, Title: pair.Value.Title, Description: pair.Value.Description})
		}
		return out, nil
	}

	var list []chapterJSON
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	out := make([]ProposedChapter, len(list))
	for i, c := range list {
		out[i] = ProposedChapter{ID: types.ScalarString(c.ID), Title: c.Title, Description: c.Description}
	}
	return out, nil
}

func isMissing(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// Parse inverts the model's assignment into an outline keyed by chapter
// title. Assignments to unknown chapters, and of ids that are not related
// subtopics in labelled, are logged and dropped. Each chapter's Subtopics
// holds the labelled outcome of each assigned id.
func (a *Assembler) Parse(resp *Response, labelled *types.LabelledSet) *types.Outline {
	chapters := make(map[string]ProposedChapter, len(resp.Chapters))
	for _, c := range resp.Chapters {
		if _, dup := chapters[c.ID]; dup {
			a.log.Warn("duplicate chapter id, keeping first", zap.String("chapter_id", c.ID))
			continue
		}
		chapters[c.ID] = c
	}

	out := types.NewOutline()
	assigned := make(map[string]bool)
	for pair := resp.Assignments.Oldest(); pair != nil; pair = pair.Next() {
		subtopicID, chapterID := pair.Key, pair.Value

		proposed, ok := chapters[chapterID]
		if !ok {
			a.log.Warn("chapter id not found, dropping assignment",
				zap.String("chapter_id", chapterID), zap.String("subtopic_id", subtopicID))
			continue
		}
		lc, ok := labelled.Get(subtopicID)
		if !ok || !lc.Outcome.IsRelated() {
			a.log.Warn("assigned id is not a related subtopic, dropping",
				zap.String("subtopic_id", subtopicID), zap.String("chapter_id", chapterID))
			continue
		}

		ch, ok := out.Get(proposed.Title)
		if !ok {
			ch = &types.Chapter{Description: proposed.Description}
			out.Set(proposed.Title, ch)
		}
		ch.SubtopicIDs = append(ch.SubtopicIDs, subtopicID)
		ch.Subtopics = append(ch.Subtopics, lc.Outcome)
		assigned[subtopicID] = true
	}

	for pair := labelled.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Outcome.IsRelated() && !assigned[pair.Key] {
			a.log.Warn("related subtopic left without a chapter", zap.String("subtopic_id", pair.Key))
		}
	}
	return out
}

// Assemble runs FilterRelated, Generate and Parse.
func (a *Assembler) Assemble(ctx context.Context, labelled *types.LabelledSet) (*types.Outline, error) {
	related := FilterRelated(labelled)
	a.log.Info("related subtopics", zap.Int("related", related.Len()), zap.Int("clusters", labelled.Len()))

	resp, err := a.Generate(ctx, related)
	if err != nil {
		return nil, err
	}
	return a.Parse(resp, labelled), nil
}

// Build returns the outline for the assembler's query. A stored outline is
// loaded as is unless refresh is set; otherwise it is assembled and saved.
// Nothing is saved when assembly fails.
func (a *Assembler) Build(ctx context.Context, store artifact.Store, labelled *types.LabelledSet, refresh bool) (*types.Outline, error) {
	key := artifact.Key{Query: a.query, Kind: artifact.KindOutline}
	if !refresh {
		cached, ok, err := Load(ctx, store, a.query)
		if err != nil {
			return nil, err
		}
		if ok {
			a.log.Info("loaded outline", zap.String("location", store.Location(key)))
			return cached, nil
		}
	}

	out, err := a.Assemble(ctx, labelled)
	if err != nil {
		return nil, err
	}
	if err := artifact.SaveJSON(ctx, store, key, out); err != nil {
		return nil, err
	}
	a.log.Info("outline saved", zap.String("location", store.Location(key)))
	return out, nil
}

// Load reads the stored outline for query, reporting false when absent.
func Load(ctx context.Context, store artifact.Store, query string) (*types.Outline, bool, error) {
	out := types.NewOutline()
	ok, err := artifact.LoadJSON(ctx, store, artifact.Key{Query: query, Kind: artifact.KindOutline}, out)
	if err != nil || !ok {
		return nil, ok, err
	}
	return out, true, nil
}
