package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apetrei/casa-scout/app/listing"
)

// existenceCheckBatchSize bounds the url=in.(...) parameter so queries
// stay within URL length limits.
const existenceCheckBatchSize = 100

const clientTimeout = 20 * time.Second

// Client talks to the hosted listing store over its REST contract.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

// ExistingURLs reports which of the given URLs the store already
// holds, querying in batches.
func (c *Client) ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	for start := 0; start < len(urls); start += existenceCheckBatchSize {
		end := min(start+existenceCheckBatchSize, len(urls))
		batch := urls[start:end]

		quoted := make([]string, len(batch))
		for i, u := range batch {
			quoted[i] = `"` + u + `"`
		}
		query := url.Values{}
		query.Set("select", "url")
		query.Set("url", "in.("+strings.Join(quoted, ",")+")")

		endpoint := c.baseURL + "/rest/v1/listings?" + query.Encode()
		body, err := c.do(ctx, "GET", endpoint, nil, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check existing listings: %w", err)
		}

		var rows []struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode existence check response: %w", err)
		}
		for _, row := range rows {
			existing[row.URL] = struct{}{}
		}
	}

	return existing, nil
}

// UpsertListings writes listings keyed on URL and returns the ids the
// store assigned. An upsert keeps reruns idempotent when the cache was
// lost.
func (c *Client) UpsertListings(ctx context.Context, listings []listing.Listing) ([]string, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(listings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode listings: %w", err)
	}

	endpoint := c.baseURL + "/rest/v1/listings?on_conflict=url"
	body, err := c.do(ctx, "POST", endpoint, payload, "resolution=merge-duplicates,return=representation")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert listings: %w", err)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode upsert response: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// CreateEvent records a pipeline event for downstream consumers.
func (c *Client) CreateEvent(ctx context.Context, eventType string, payload map[string]any) error {
	record := map[string]any{
		"type":       eventType,
		"payload":    payload,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	return c.insert(ctx, "events", record)
}

// CreateMission queues a unit of work for the analysis agent.
func (c *Client) CreateMission(ctx context.Context, missionType, status string, payload map[string]any) error {
	record := map[string]any{
		"type":       missionType,
		"status":     status,
		"payload":    payload,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	return c.insert(ctx, "missions", record)
}

// LogAgentState writes an audit trail entry for the named agent.
func (c *Client) LogAgentState(ctx context.Context, agent, state string, details map[string]any) error {
	record := map[string]any{
		"agent":      agent,
		"state":      state,
		"details":    details,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	return c.insert(ctx, "agent_state", record)
}

func (c *Client) insert(ctx context.Context, table string, record map[string]any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", table, err)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	if _, err := c.do(ctx, "POST", endpoint, payload, ""); err != nil {
		return fmt.Errorf("failed to insert %s record: %w", table, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, prefer string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("Store request rejected", "method", method, "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return body, nil
}
