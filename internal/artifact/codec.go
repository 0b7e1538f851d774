// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// jsonIndent matches the four-space indentation of existing artifacts.
const jsonIndent = "    "

// SaveJSON stores v as indented JSON.
func SaveJSON(ctx context.Context, s Store, key Key, v any) error {
	data, err := json.MarshalIndent(v, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key.Kind, err)
	}
	return s.Put(ctx, key, data)
}

// LoadJSON decodes the artifact under key into v. It reports false, with v
// untouched, when the artifact is absent.
func LoadJSON(ctx context.Context, s Store, key Key, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", s.Location(key), err)
	}
	return true, nil
}

// EncodeJSONL writes one compact JSON value per line.
func EncodeJSONL(records []json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	for i, r := range records {
		if err := json.Compact(&buf, r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// DecodeJSONL splits newline-delimited JSON into raw records, skipping blank lines.
func DecodeJSONL(data []byte) ([]json.RawMessage, error) {
	var records []json.RawMessage
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		if !json.Valid(b) {
			return nil, fmt.Errorf("line %d is not valid JSON", line)
		}
		records = append(records, json.RawMessage(bytes.Clone(b)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading JSONL: %w", err)
	}
	return records, nil
}

// SaveGob stores v in gob encoding.
func SaveGob(ctx context.Context, s Store, key Key, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", key.Kind, err)
	}
	return s.Put(ctx, key, buf.Bytes())
}

// LoadGob decodes a gob artifact into v, reporting false when absent.
func LoadGob(ctx context.Context, s Store, key Key, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", s.Location(key), err)
	}
	return true, nil
}
