// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the outline-engine pipeline:
// papers and their embeddings, externally produced clusters, labelled
// clusters, and the chapter outline assembled from them.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Paper is a single search result as it flows through clustering, labelling
// and outline assembly.
type Paper struct {
	// Title is the normalized title. List-valued titles are joined with spaces.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the publication year as reported by the search backend.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Link points at the paper's landing page when the backend provides one.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`
}

// UnmarshalJSON accepts string or list-of-string titles and string or
// numeric years.
func (p *Paper) UnmarshalJSON(data []byte) error {
	var aux struct {
		Title    json.RawMessage `json:"title"`
		Abstract string          `json:"abstract"`
		Year     json.RawMessage `json:"year"`
		Link     string          `json:"link"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	title, ok := TitleFromJSON(aux.Title)
	if !ok && len(aux.Title) > 0 && string(aux.Title) != "null" {
		return fmt.Errorf("title is neither a string nor a list of strings: %s", aux.Title)
	}
	*p = Paper{
		Title:    title,
		Abstract: aux.Abstract,
		Year:     ScalarString(aux.Year),
		Link:     aux.Link,
	}
	return nil
}

// TitleFromJSON decodes a title that may arrive as a string or as a list of
// string fragments. Fragments are joined with single spaces. The second
// return is false when raw holds anything else.
func TitleFromJSON(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var parts []string
	if err := json.Unmarshal(raw, &parts); err == nil {
		return strings.Join(parts, " "), true
	}
	return "", false
}

// ScalarString renders a JSON scalar as a string: strings are unquoted,
// numbers and booleans keep their literal text, null and empty become "".
func ScalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// EmbeddingRecord is the persisted result of embedding one unique paper.
// Records are written once per query and never mutated.
type EmbeddingRecord struct {
	Title    string
	Abstract string
	Link     string
	Vector   []float32
}
