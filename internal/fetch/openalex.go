// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/outline-engine/internal/httputil"
)

// openAlexWorksURL is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksURL = "https://api.openalex.org/works"

const openAlexPageLimit = 200

// OpenAlexBackend queries the OpenAlex API. Offsets are translated to
// page numbers, so start must be a multiple of rows.
type OpenAlexBackend struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return "openalex" }

// PageLimit returns the largest per_page value OpenAlex accepts.
func (b *OpenAlexBackend) PageLimit() int { return openAlexPageLimit }

// FetchPage returns works as {title, abstract, year, link} records.
func (b *OpenAlexBackend) FetchPage(ctx context.Context, query string, start, rows int) ([]json.RawMessage, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("rows must be positive")
	}
	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(rows)},
		"page":     {strconv.Itoa(start/rows + 1)},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexWorksURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus("OpenAlex API", resp); err != nil {
		return nil, err
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if oar.Results == nil {
		return nil, fmt.Errorf("%w: no results field", ErrMalformedResponse)
	}

	records := make([]json.RawMessage, 0, len(oar.Results))
	for _, work := range oar.Results {
		rec := openAlexRecord{
			Title:    work.Title,
			Abstract: reconstructAbstract(work.AbstractInvertedIndex),
			Link:     work.DOI,
		}
		if rec.Link == "" {
			rec.Link = work.ID
		}
		if work.PublicationYear > 0 {
			rec.Year = strconv.Itoa(work.PublicationYear)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encoding work %s: %w", work.ID, err)
		}
		records = append(records, data)
	}
	return records, nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// openAlexRecord is the record shape written for each work.
type openAlexRecord struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Year     string `json:"year,omitempty"`
	Link     string `json:"link,omitempty"`
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	DOI                   string           `json:"doi"`
	PublicationYear       int              `json:"publication_year"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}
