package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config identifies a dataset on the query API.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // e.g. "2023-01-01"
	Token      string // optional, needed for private datasets
	UseCDN     bool
	Timeout    time.Duration
	// BaseURL overrides the derived API host, mostly for tests.
	BaseURL string
}

// Client runs GROQ queries over the HTTP query API.
type Client struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
}

// QueryError is returned when the API rejects a query or answers non-2xx.
type QueryError struct {
	StatusCode  int
	Type        string
	Description string
}

func (e *QueryError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("sanity: %s (%d): %s", e.Type, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("sanity: status %d: %s", e.StatusCode, e.Description)
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, errors.New("sanity: project id and dataset are required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2023-01-01"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		host := "api.sanity.io"
		if cfg.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", cfg.ProjectID, host)
	}
	version := strings.TrimPrefix(cfg.APIVersion, "v")

	return &Client{
		cfg:        cfg,
		endpoint:   fmt.Sprintf("%s/v%s/data/query/%s", base, version, url.PathEscape(cfg.Dataset)),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Query runs a GROQ query and decodes its result into out. Params are sent
// as $name query parameters with JSON-encoded values.
func (c *Client) Query(ctx context.Context, groq string, params map[string]interface{}, out interface{}) error {
	values := url.Values{}
	values.Set("query", groq)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("sanity: encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sanity: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("sanity: read response: %w", err)
	}

	var qr queryResponse
	decodeErr := json.Unmarshal(body, &qr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		qe := &QueryError{StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(body))}
		if decodeErr == nil && qr.Error != nil {
			qe.Type = qr.Error.Type
			qe.Description = qr.Error.Description
		}
		return qe
	}
	if decodeErr != nil {
		return fmt.Errorf("sanity: decode response: %w", decodeErr)
	}
	if qr.Error != nil {
		return &QueryError{StatusCode: resp.StatusCode, Type: qr.Error.Type, Description: qr.Error.Description}
	}
	if out == nil || len(qr.Result) == 0 {
		return nil
	}
	return json.Unmarshal(qr.Result, out)
}
