// ABOUTME: File and HTTP fetchers returning raw per-day records.
// ABOUTME: Both accept a bare JSON array or a {"data": [...]} envelope.
package chart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/trends"
)

// DecodeRawRecords parses a JSON array of objects, or an object whose "data"
// field holds that array. Numbers are kept as json.Number so integer and
// decimal values reach the normalizer unchanged. Array elements that are not
// objects come back as nil records, which the normalizer skips.
func DecodeRawRecords(r io.Reader) ([]trends.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		data, ok := v["data"].([]any)
		if !ok {
			return nil, fmt.Errorf("decode records: object has no data array")
		}
		items = data
	default:
		return nil, fmt.Errorf("decode records: expected array or object, got %T", doc)
	}

	out := make([]trends.RawRecord, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		out = append(out, trends.RawRecord(obj))
	}
	return out, nil
}

// FileFetcher reads raw records from a JSON file on every fetch.
type FileFetcher struct {
	Path string
}

// Fetch returns every record in the file; Service drops out-of-range ones.
func (f FileFetcher) Fetch(ctx context.Context, userID string, from, to time.Time) ([]trends.RawRecord, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return DecodeRawRecords(bytes.NewReader(data))
}

// HTTPFetcher reads raw records from a health-logs endpoint:
// GET {BaseURL}/api/health-logs?start=YYYY-MM-DD&end=YYYY-MM-DD&user_id=...
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// Fetch requests the range from the remote server. A 404 means no logs.
func (f HTTPFetcher) Fetch(ctx context.Context, userID string, from, to time.Time) ([]trends.RawRecord, error) {
	params := url.Values{}
	params.Set("start", models.FormatDate(from))
	params.Set("end", models.FormatDate(to))
	if userID != "" {
		params.Set("user_id", userID)
	}
	endpoint := strings.TrimRight(f.BaseURL, "/") + "/api/health-logs?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch health logs: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return []trends.RawRecord{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch health logs: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return DecodeRawRecords(resp.Body)
}
