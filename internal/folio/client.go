// =============================================================================
// FOLIO Batch - Okapi Record Store
// =============================================================================
//
// This module implements the record-store boundary against an Okapi-style
// gateway. It covers exactly what the batch drivers need:
//
//   - FindUnique : exact-match lookup that distinguishes zero, one, and
//                  many results as separate modeled outcomes
//   - Overwrite  : whole-record PUT to the record's canonical location
//   - ListAll    : read a full collection with offset/limit paging
//   - Query      : CQL list query against a collection
//   - Post       : bare POST, used to release encumbrance transactions
//
// There is deliberately no retry, no backoff, and no response caching.
// Remote rejections and transport faults both surface as a CallResult so
// row processing can record them and move on; only the login handshake
// returns a hard error.
//
// =============================================================================

package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// FindStatus tags the outcome of a unique-key lookup. Callers must handle
// all three cases; the store never silently picks a candidate.
type FindStatus int

const (
	// FindNotFound means the query matched no records. Expected in real
	// input sets; not an error.
	FindNotFound FindStatus = iota

	// FindFound means the query matched exactly one record.
	FindFound

	// FindAmbiguous means the query matched more than one record.
	FindAmbiguous
)

// FindResult is the outcome of FindUnique.
type FindResult struct {
	// Status tags which of the three outcomes occurred.
	Status FindStatus

	// Record is the single match when Status is FindFound, nil otherwise.
	Record Record

	// Total is the number of records the query matched.
	Total int
}

// CallResult carries the raw outcome of a mutating call. Transport faults
// are not distinguished from remote rejections: StatusCode is 0 and Message
// holds the transport error text.
type CallResult struct {
	StatusCode int
	Message    string
}

// OK reports whether the call returned the gateway's success status for
// record mutations (204 No Content).
func (r CallResult) OK() bool {
	return r.StatusCode == http.StatusNoContent
}

// Store is the record-store capability consumed by the batch drivers and
// the re-encumbrance engine. *Client implements it; tests substitute fakes.
type Store interface {
	FindUnique(ctx context.Context, path, key, field, value string) (FindResult, error)
	Overwrite(ctx context.Context, path string, rec Record) CallResult
	ListAll(ctx context.Context, path, key string) ([]Record, error)
	Query(ctx context.Context, path, key, cql string) ([]Record, error)
	Post(ctx context.Context, path string, body any) CallResult
}

// listPageSize is the offset/limit page size used by ListAll.
const listPageSize = 100

// =============================================================================
// CLIENT
// =============================================================================

// Client is an authenticated Okapi HTTP client.
type Client struct {
	baseURL string
	tenant  string
	token   string
	http    *http.Client
	log     *zap.Logger
}

var _ Store = (*Client)(nil)

// Connect authenticates against /authn/login and returns a ready client.
// The token from the x-okapi-token response header is attached to every
// subsequent call.
func Connect(ctx context.Context, okapiURL, tenant, username, password string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		baseURL: okapiURL,
		tenant:  tenant,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}

	creds, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/authn/login", bytes.NewReader(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-okapi-tenant", c.tenant)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login rejected: status %d: %s", resp.StatusCode, string(body))
	}

	token := resp.Header.Get("x-okapi-token")
	if token == "" {
		return nil, fmt.Errorf("login response carried no x-okapi-token header")
	}
	c.token = token

	log.Debug("authenticated against Okapi", zap.String("url", c.baseURL), zap.String("tenant", c.tenant))
	return c, nil
}

// headers stamps the standard Okapi headers onto a request.
func (c *Client) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("x-okapi-tenant", c.tenant)
	req.Header.Set("x-okapi-token", c.token)
}

// getJSON performs a GET and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, rawURL string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.headers(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d: %s", rawURL, resp.StatusCode, string(body))
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("GET %s: bad JSON: %w", rawURL, err)
	}
	return rec, nil
}

// =============================================================================
// STORE OPERATIONS
// =============================================================================

// FindUnique queries a collection with an exact-match CQL predicate
// (field=="value") and reports zero, one, or many matches as distinct
// outcomes. key names the JSON array holding the records in the response
// envelope (e.g. "poLines", "items").
func (c *Client) FindUnique(ctx context.Context, path, key, field, value string) (FindResult, error) {
	cql := fmt.Sprintf(`%s=="%s"`, field, value)
	rawURL := fmt.Sprintf("%s%s?query=%s", c.baseURL, path, url.QueryEscape(cql))

	env, err := c.getJSON(ctx, rawURL)
	if err != nil {
		return FindResult{}, err
	}

	total := totalRecords(env)
	recs := RecordSlice(env[key])

	switch {
	case total == 0:
		return FindResult{Status: FindNotFound}, nil
	case total > 1:
		return FindResult{Status: FindAmbiguous, Total: total}, nil
	}
	if len(recs) == 0 {
		return FindResult{}, fmt.Errorf("GET %s: totalRecords=1 but %q array empty", path, key)
	}
	return FindResult{Status: FindFound, Record: recs[0], Total: 1}, nil
}

// Overwrite PUTs a full record to its canonical location (path + "/" + id).
// The caller gets the raw status and body back; 204 is success.
func (c *Client) Overwrite(ctx context.Context, path string, rec Record) CallResult {
	id := ID(rec)
	if id == "" {
		return CallResult{Message: "record has no id"}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return CallResult{Message: fmt.Sprintf("failed to encode record: %v", err)}
	}

	rawURL := c.baseURL + path + "/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, bytes.NewReader(payload))
	if err != nil {
		return CallResult{Message: err.Error()}
	}
	c.headers(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return CallResult{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	c.log.Debug("overwrite",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode))
	return CallResult{StatusCode: resp.StatusCode, Message: string(body)}
}

// ListAll reads an entire collection, paging by offset/limit until
// totalRecords is exhausted. Used once per run to build lookup tables.
func (c *Client) ListAll(ctx context.Context, path, key string) ([]Record, error) {
	var all []Record
	for offset := 0; ; offset += listPageSize {
		rawURL := fmt.Sprintf("%s%s?limit=%d&offset=%d", c.baseURL, path, listPageSize, offset)
		env, err := c.getJSON(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		page := RecordSlice(env[key])
		all = append(all, page...)

		if len(page) == 0 || len(all) >= totalRecords(env) {
			return all, nil
		}
	}
}

// Query runs a raw CQL list query against a collection and returns all
// records from the first page of results.
func (c *Client) Query(ctx context.Context, path, key, cql string) ([]Record, error) {
	rawURL := fmt.Sprintf("%s%s?query=%s", c.baseURL, path, url.QueryEscape(cql))
	env, err := c.getJSON(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return RecordSlice(env[key]), nil
}

// Post sends a JSON POST to a path, returning the raw result. body may be
// nil for bodyless calls.
func (c *Client) Post(ctx context.Context, path string, body any) CallResult {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return CallResult{Message: fmt.Sprintf("failed to encode body: %v", err)}
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return CallResult{Message: err.Error()}
	}
	c.headers(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return CallResult{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return CallResult{StatusCode: resp.StatusCode, Message: string(raw)}
}

// totalRecords extracts the totalRecords count from a list envelope.
func totalRecords(env Record) int {
	n, ok := env["totalRecords"].(float64)
	if !ok {
		return 0
	}
	return int(n)
}
