package store

import (
	"context"
	"net/http"
	"net/url"

	"github.com/matzehuels/dashgrid/pkg/buildinfo"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/httputil"
)

// PutRequest is the body of PUT /api/layouts/{topology}/{group}.
type PutRequest struct {
	Sizes    []float64 `json:"sizes"`
	Revision string    `json:"revision,omitempty"`
}

// ListResponse is the body of GET /api/layouts/{topology}.
type ListResponse struct {
	Topology string   `json:"topology"`
	Layouts  []Record `json:"layouts"`
}

// HTTPStore talks to a dashgrid server. Transport failures and 5xx
// responses come back wrapped in [httputil.RetryableError].
type HTTPStore struct {
	client *httputil.Client
}

// NewHTTPStore creates a client for the server at baseURL.
func NewHTTPStore(baseURL string, hc *http.Client) (*HTTPStore, error) {
	c, err := httputil.NewClient(baseURL, hc, map[string]string{"User-Agent": buildinfo.UserAgent()})
	if err != nil {
		return nil, err
	}
	return &HTTPStore{client: c}, nil
}

func layoutPath(topology, group string) string {
	p := "/api/layouts/" + url.PathEscape(topology)
	if group != "" {
		p += "/" + url.PathEscape(group)
	}
	return p
}

func (s *HTTPStore) Get(ctx context.Context, topology, group string) (*Record, error) {
	var rec Record
	err := s.client.Do(ctx, http.MethodGet, layoutPath(topology, group), nil, &rec)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *HTTPStore) Put(ctx context.Context, rec *Record) error {
	if err := stamp(rec); err != nil {
		return err
	}
	body := PutRequest{Sizes: rec.Sizes, Revision: rec.Revision}
	return s.client.Do(ctx, http.MethodPut, layoutPath(rec.Topology, rec.Group), body, nil)
}

func (s *HTTPStore) Delete(ctx context.Context, topology, group string) error {
	err := s.client.Do(ctx, http.MethodDelete, layoutPath(topology, group), nil, nil)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil
	}
	return err
}

func (s *HTTPStore) List(ctx context.Context, topology string) ([]Record, error) {
	var resp ListResponse
	if err := s.client.Do(ctx, http.MethodGet, layoutPath(topology, ""), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Layouts, nil
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (s *HTTPStore) Close() error { return nil }

var _ Store = (*HTTPStore)(nil)
