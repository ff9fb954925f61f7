package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/phylograph/treedag/pkg/cache"
	"github.com/phylograph/treedag/pkg/errors"
	"github.com/phylograph/treedag/pkg/graph"
	"github.com/phylograph/treedag/pkg/observability"
	"github.com/phylograph/treedag/pkg/ops"
	"github.com/phylograph/treedag/pkg/pipeline"
	"github.com/phylograph/treedag/pkg/sample"
)

// maxBodyBytes caps request bodies. Samples are small; anything larger is
// almost certainly a mistake.
const maxBodyBytes = 16 << 20

type handlers struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// scheduleRequest is the body of POST /v1/schedule.
type scheduleRequest struct {
	Sample  json.RawMessage `json:"sample"`
	Goals   []string        `json:"goals,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
}

// scheduleResponse carries the scheduled programs keyed by goal.
type scheduleResponse struct {
	SampleHash string                 `json:"sample_hash"`
	Stats      statsPayload           `json:"stats"`
	Cached     bool                   `json:"cached"`
	Programs   map[string]ops.Program `json:"programs"`
}

// graphRequest is the body of POST /v1/graph.
type graphRequest struct {
	Sample json.RawMessage `json:"sample"`
}

// graphResponse carries the serialized subsplit graph.
type graphResponse struct {
	SampleHash   string         `json:"sample_hash"`
	DocumentHash string         `json:"document_hash"`
	Graph        graph.Document `json:"graph"`
}

// renderRequest is the body of POST /v1/render.
type renderRequest struct {
	Sample   json.RawMessage `json:"sample"`
	Format   string          `json:"format,omitempty"`
	Detailed bool            `json:"detailed,omitempty"`
	Refresh  bool            `json:"refresh,omitempty"`
}

// statsPayload summarizes the built graph.
type statsPayload struct {
	Taxa       int `json:"taxa"`
	Nodes      int `json:"nodes"`
	Rootsplits int `json:"rootsplits"`
	Parameters int `json:"parameters"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// artifactContentTypes maps output formats to response content types.
var artifactContentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatBSON: "application/bson",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := decodeSample(req.Sample)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	d, err := h.runner.Build(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sampleHash, err := pipeline.HashSample(c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{Goals: req.Goals, Refresh: req.Refresh}
	programs, cached, err := h.runner.ScheduleWithCacheInfo(r.Context(), d, sampleHash, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, scheduleResponse{
		SampleHash: sampleHash,
		Stats: statsPayload{
			Taxa:       d.TaxonCount(),
			Nodes:      d.NodeCount(),
			Rootsplits: d.RootsplitCount(),
			Parameters: d.GeneralizedPCSPCount(),
		},
		Cached:   cached,
		Programs: programs,
	})
}

func (h *handlers) graph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := decodeSample(req.Sample)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	d, err := h.runner.Build(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sampleHash, err := pipeline.HashSample(c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	doc := graph.FromDAG(d, c.Taxa)
	docData, err := pipeline.MarshalDocument(doc)
	if err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph"))
		return
	}

	writeJSON(w, http.StatusOK, graphResponse{
		SampleHash:   sampleHash,
		DocumentHash: cache.Hash(docData),
		Graph:        doc,
	})
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(req.Format); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := decodeSample(req.Sample)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Formats:  []string{req.Format},
		Detailed: req.Detailed,
		Refresh:  req.Refresh,
		Goals:    []string{pipeline.GoalLikelihood},
	}
	result, err := h.runner.Execute(r.Context(), c, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, ok := result.Artifacts[req.Format]
	if !ok {
		h.writeError(w, r, errors.New(errors.ErrCodeInternal, "artifact %s missing from result", req.Format))
		return
	}

	w.Header().Set("Content-Type", artifactContentTypes[req.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decodeBody decodes a JSON request body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// decodeSample parses and validates the sample field of a request.
func decodeSample(raw json.RawMessage) (*sample.Collection, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sample is required")
	}
	c, err := sample.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSample, err, "parse sample")
	}
	return c, nil
}

// writeError maps structured error codes to HTTP statuses.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSample,
		errors.ErrCodeInvalidGoal, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath, errors.ErrCodeUnsupported:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
