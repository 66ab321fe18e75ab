// Package ioformats reads batch URL lists and writes NDJSON results.
package ioformats

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is a URL list encoding.
type Format int

const (
	// Auto sniffs the content: CSV when the first line has a "url" column,
	// NDJSON otherwise.
	Auto Format = iota
	CSV
	NDJSON
)

var (
	ErrNoURLColumn = errors.New("csv must contain a 'url' header column")
	ErrNoURLs      = errors.New("no urls found")
)

// FormatFor picks a format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV
	case ".ndjson", ".jsonl", ".txt":
		return NDJSON
	default:
		return Auto
	}
}

// ReadURLs reads URLs from a CSV (header with "url") or NDJSON file.
// "-" reads standard input.
func ReadURLs(path string) ([]string, error) {
	if path == "-" {
		return ParseURLs(os.Stdin, Auto)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	urls, err := ParseURLs(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return urls, nil
}

// ParseURLs decodes a URL list. Duplicates are dropped, keeping the first
// occurrence.
func ParseURLs(r io.Reader, format Format) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == Auto {
		format = sniff(data)
	}

	var urls []string
	switch format {
	case CSV:
		urls, err = parseCSV(data)
	default:
		urls, err = parseNDJSON(data)
	}
	if err != nil {
		return nil, err
	}
	urls = dedupe(urls)
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}

func sniff(data []byte) Format {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	for _, h := range strings.Split(string(first), ",") {
		if strings.EqualFold(strings.Trim(strings.TrimSpace(h), `"`), "url") {
			return CSV
		}
	}
	return NDJSON
}

func parseCSV(data []byte) ([]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoURLs
	}
	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), "url") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, ErrNoURLColumn
	}
	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			if u := strings.TrimSpace(row[col]); u != "" {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

// parseNDJSON accepts {"url": "..."} objects, JSON strings or bare lines.
// Blank lines and lines starting with # are skipped.
func parseNDJSON(data []byte) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch line[0] {
		case '{':
			var obj struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.URL != "" {
				out = append(out, obj.URL)
				continue
			}
		case '"':
			var s string
			if err := json.Unmarshal([]byte(line), &s); err == nil && s != "" {
				out = append(out, s)
				continue
			}
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
