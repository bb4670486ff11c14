// Package kintone is a minimal REST client for the kintone record API,
// covering the three calls this backend needs: query records, add a record,
// and update a record by update-key.
package kintone

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrAPI marks a response kintone itself rejected (bad query, unknown app,
// permission), as opposed to transport failures which come back unwrapped.
var ErrAPI = errors.New("kintone_api_error")

// Field is a single record field value. kintone renders text, number and
// datetime values as JSON strings both ways.
type Field struct {
	Value string `json:"value"`
}

// Record maps kintone field codes to values.
type Record map[string]Field

func (r Record) Str(code string) string {
	return r[code].Value
}

type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

func NewClient(domain, user, password string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := domain
	if !strings.Contains(domain, "://") {
		baseURL = "https://" + domain
	}
	cred := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return &Client{
		baseURL:    baseURL,
		authHeader: cred,
		httpClient: httpClient,
	}
}

// GetRecords runs a kintone query and returns the matching records. An empty
// result is not an error; callers decide whether absence is fatal.
func (c *Client) GetRecords(ctx context.Context, app, query string) ([]Record, error) {
	q := url.Values{}
	q.Set("app", app)
	q.Set("query", query)
	endpoint := c.baseURL + "/k/v1/records.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Records []map[string]Field `json:"records"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(body.Records))
	for _, r := range body.Records {
		out = append(out, Record(r))
	}
	return out, nil
}

// AddRecord appends one record to an app.
func (c *Client) AddRecord(ctx context.Context, app string, record Record) error {
	payload := map[string]any{
		"app":    app,
		"record": record,
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/k/v1/record.json", payload)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// UpdateRecordByKey updates the record whose keyField equals keyValue. The
// update is blind: kintone resolves the row, we never see a row id.
func (c *Client) UpdateRecordByKey(ctx context.Context, app, keyField, keyValue string, record Record) error {
	payload := map[string]any{
		"app": app,
		"updateKey": map[string]string{
			"field": keyField,
			"value": keyValue,
		},
		"record": record,
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/k/v1/record.json", payload)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-Cybozu-Authorization", c.authHeader)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kintone request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("kintone response read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		return fmt.Errorf("%w: status=%d code=%s message=%s", ErrAPI, resp.StatusCode, apiErr.Code, apiErr.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("kintone response decode: %w", err)
	}
	return nil
}
