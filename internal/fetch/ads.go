// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pdiddy/outline-engine/internal/httputil"
)

// adsSearchURL is the ADS search endpoint. Declared as a var so tests can
// substitute an httptest server.
var adsSearchURL = "https://api.adsabs.harvard.edu/v1/search/query"

const (
	adsFields    = "title,abstract,year,bibcode"
	adsSort      = "relevance"
	adsPageLimit = 2000
	adsAbsURL    = "https://ui.adsabs.harvard.edu/abs/%s/abstract"

	// maxLoggedBody bounds how much of a malformed body ends up in the error.
	maxLoggedBody = 300
)

// ADSBackend queries the NASA Astrophysics Data System search API.
type ADSBackend struct {
	Client *http.Client
	Token  string
}

// Name returns the backend identifier.
func (b *ADSBackend) Name() string { return "ads" }

// PageLimit returns the largest rows value ADS accepts.
func (b *ADSBackend) PageLimit() int { return adsPageLimit }

// FetchPage requests rows records starting at start. Docs are returned as
// the API sent them, plus a link derived from the bibcode.
func (b *ADSBackend) FetchPage(ctx context.Context, query string, start, rows int) ([]json.RawMessage, error) {
	params := url.Values{
		"q":     {query},
		"fl":    {adsFields},
		"start": {strconv.Itoa(start)},
		"rows":  {strconv.Itoa(rows)},
		"sort":  {adsSort},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, adsSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ADS API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus("ADS API", resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading ADS response: %w", err)
	}

	var ar adsResponse
	if err := json.Unmarshal(body, &ar); err != nil || ar.Response == nil || ar.Response.Docs == nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, truncateBody(body))
	}

	docs := make([]json.RawMessage, len(ar.Response.Docs))
	for i, doc := range ar.Response.Docs {
		docs[i] = withADSLink(doc)
	}
	return docs, nil
}

// withADSLink adds a "link" field built from the doc's bibcode, keeping the
// original field order. Docs without a bibcode, or that already carry a
// link, are returned unchanged.
func withADSLink(doc json.RawMessage) json.RawMessage {
	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(doc, fields); err != nil {
		return doc
	}
	if _, ok := fields.Get("link"); ok {
		return doc
	}
	raw, ok := fields.Get("bibcode")
	if !ok {
		return doc
	}
	var bibcode string
	if err := json.Unmarshal(raw, &bibcode); err != nil || bibcode == "" {
		return doc
	}
	link, err := json.Marshal(fmt.Sprintf(adsAbsURL, url.PathEscape(bibcode)))
	if err != nil {
		return doc
	}
	fields.Set("link", link)
	out, err := json.Marshal(fields)
	if err != nil {
		return doc
	}
	return out
}

func truncateBody(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}

type adsResponse struct {
	Response *adsResult `json:"response"`
}

type adsResult struct {
	NumFound int               `json:"numFound"`
	Start    int               `json:"start"`
	Docs     []json.RawMessage `json:"docs"`
}
