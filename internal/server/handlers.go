package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/dashgrid/pkg/buildinfo"
	"github.com/matzehuels/dashgrid/pkg/cache"
	"github.com/matzehuels/dashgrid/pkg/errors"
	"github.com/matzehuels/dashgrid/pkg/grid"
	"github.com/matzehuels/dashgrid/pkg/proportion"
	"github.com/matzehuels/dashgrid/pkg/store"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	OK       bool   `json:"ok"`
	Status   string `json:"status"`
	Degraded bool   `json:"degraded"`
	Store    string `json:"store"`
	Version  string `json:"version"`
}

// TopologyList is the body of GET /api/topologies.
type TopologyList struct {
	Topologies []*grid.Topology `json:"topologies"`
}

// TopologyResponse is the body of GET /api/topologies/{name}.
type TopologyResponse struct {
	*grid.Topology
	Defaults grid.Proportions `json:"defaults"`
}

// CompileRequest is the body of POST /api/topologies/{name}/compile. Groups
// missing from Proportions use an equal split.
type CompileRequest struct {
	Proportions map[string][]float64 `json:"proportions,omitempty"`
	GapPx       float64              `json:"gap_px,omitempty"`
}

// CompileResponse is the body returned by the compile route.
type CompileResponse struct {
	Topology string                       `json:"topology"`
	Cells    map[string]grid.CellGeometry `json:"cells"`
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), DefaultPingTimeout)
	defer cancel()

	resp := HealthResponse{OK: true, Status: "ok", Store: "ok", Version: buildinfo.Version}
	status := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		resp.OK = false
		resp.Status = "unavailable"
		resp.Store = err.Error()
		status = http.StatusServiceUnavailable
	} else if s.degraded() {
		resp.Degraded = true
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// Topologies
// =============================================================================

func (s *Server) handleListTopologies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TopologyList{Topologies: grid.All()})
}

func (s *Server) handleGetTopology(w http.ResponseWriter, r *http.Request) {
	t, err := grid.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TopologyResponse{Topology: t, Defaults: t.Defaults()})
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	t, err := grid.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req CompileRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	key := s.keyer.CompileKey(t.Name, cache.CompileKeyOpts{Proportions: req.Proportions, GapPx: req.GapPx})
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		writeRaw(w, http.StatusOK, "hit", data)
		return
	}

	p := make(grid.Proportions, len(req.Proportions))
	for g, v := range req.Proportions {
		p[g] = proportion.Vector(v)
	}
	cells, err := t.Compile(p, grid.Options{GapPx: req.GapPx})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := json.Marshal(CompileResponse{Topology: t.Name, Cells: cells})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode geometry"))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.compileTTL); err != nil {
		s.logger.Warn("Compile cache write failed", "topology", t.Name, "err", err)
	}
	writeRaw(w, http.StatusOK, "miss", data)
}

// =============================================================================
// Layouts
// =============================================================================

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	t, err := grid.Lookup(chi.URLParam(r, "topology"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.store.List(r.Context(), t.Name)
	if err != nil {
		s.writeError(w, r, storageError(err, "list layouts"))
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, store.ListResponse{Topology: t.Name, Layouts: recs})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	t, g, err := layoutParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Get(r.Context(), t.Name, g.ID)
	if err != nil {
		s.writeError(w, r, storageError(err, "get layout"))
		return
	}
	if rec == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no layout stored for %s", store.Key(t.Name, g.ID)))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePutLayout(w http.ResponseWriter, r *http.Request) {
	t, g, err := layoutParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	req, err := store.ParsePutRequest(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sizes := proportion.Vector(req.Sizes)
	if err := sizes.ValidateLen(g.Size); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidProportions, err, "group %s of %s", g.ID, t.Name))
		return
	}

	rec := &store.Record{Topology: t.Name, Group: g.ID, Sizes: sizes, Revision: req.Revision}
	if rec.Revision == "" {
		rec.Revision = uuid.NewString()
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, storageError(err, "put layout"))
		return
	}
	s.logger.Debug("Layout stored", "key", rec.Key(), "revision", rec.Revision, "sizes", rec.Sizes.String())
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	t, g, err := layoutParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), t.Name, g.ID); err != nil {
		s.writeError(w, r, storageError(err, "delete layout"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// layoutParams resolves the {topology} and {group} URL parameters.
func layoutParams(r *http.Request) (*grid.Topology, grid.Group, error) {
	t, err := grid.Lookup(chi.URLParam(r, "topology"))
	if err != nil {
		return nil, grid.Group{}, err
	}
	id := chi.URLParam(r, "group")
	g, ok := t.Group(id)
	if !ok {
		return nil, grid.Group{}, errors.New(errors.ErrCodeInvalidGroup, "topology %s has no group %q", t.Name, id)
	}
	return t, g, nil
}

// =============================================================================
// Encoding
// =============================================================================

// storageError codes backend errors that carry no code of their own.
func storageError(err error, op string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeStorage, err, "%s", op)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)
	if status >= 500 {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Error: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRaw(w http.ResponseWriter, status int, cacheStatus string, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
