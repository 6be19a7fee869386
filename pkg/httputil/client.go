package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/observability"
)

// DefaultTimeout bounds every request made by a [Client] built with
// [NewClient].
const DefaultTimeout = 10 * time.Second

// Client performs JSON requests against one base URL.
type Client struct {
	http    *http.Client
	base    *url.URL
	headers map[string]string
}

// NewClient creates a Client for baseURL. Headers are applied to every
// request; pass nil if none are needed. A nil hc uses an http.Client with
// [DefaultTimeout].
func NewClient(baseURL string, hc *http.Client, headers map[string]string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "base url %q must be http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{http: hc, base: u, headers: headers}, nil
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string { return c.base.String() }

// Do sends in (JSON-encoded, if non-nil) to path and decodes the response
// into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, reqPath := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, reqPath)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, reqPath, err)
		return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, reqPath)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, reqPath, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decode response")
	}
	return nil
}

// errorBody is the JSON error envelope written by the dashgrid server.
type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	if code >= 500 {
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "status %d", code)}
	}

	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &eb) == nil && eb.Code != "" {
		return errors.New(errors.Code(eb.Code), "%s", eb.Error)
	}
	if code == http.StatusNotFound {
		return errors.New(errors.ErrCodeNotFound, "%s not found", resp.Request.URL.Path)
	}
	return errors.New(errors.ErrCodeNetwork, "status %d", code)
}

// IsRetryable reports whether err is wrapped in [RetryableError].
func IsRetryable(err error) bool {
	return isRetryable(err)
}
