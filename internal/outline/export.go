// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"context"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/outline-engine/internal/artifact"
	"github.com/pdiddy/outline-engine/pkg/types"
)

// ExportChapter is one chapter in the YAML export.
type ExportChapter struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Subtopics   []ExportSubtopic `yaml:"subtopics"`
}

// ExportSubtopic is one subtopic entry within an exported chapter.
type ExportSubtopic struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description,omitempty"`
	Relatedness float64 `yaml:"relatedness,omitempty"`
}

// ExportEntries flattens out into chapter order.
func ExportEntries(out *types.Outline) []ExportChapter {
	entries := make([]ExportChapter, 0, out.Len())
	for pair := out.Oldest(); pair != nil; pair = pair.Next() {
		ch := pair.Value
		entry := ExportChapter{Title: pair.Key, Description: ch.Description}
		for i, id := range ch.SubtopicIDs {
			sub := ExportSubtopic{ID: id}
			if i < len(ch.Subtopics) {
				if info, ok := ch.Subtopics[i].Subtopic(); ok {
					sub.Title = info.Subtopic
					sub.Description = info.Description
					sub.Relatedness = float64(info.Relatedness)
				}
			}
			entry.Subtopics = append(entry.Subtopics, sub)
		}
		entries = append(entries, entry)
	}
	return entries
}

// ExportYAML stores out as a YAML list of chapters next to the JSON outline.
func ExportYAML(ctx context.Context, store artifact.Store, query string, out *types.Outline) (string, error) {
	data, err := yaml.Marshal(ExportEntries(out))
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	key := artifact.Key{Query: query, Kind: artifact.KindOutlineYAML}
	if err := store.Put(ctx, key, data); err != nil {
		return "", err
	}
	return store.Location(key), nil
}
