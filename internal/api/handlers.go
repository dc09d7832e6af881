package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tidwall/sjson"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/ddl"
	"github.com/hyperengineering/searchbridge/internal/dsl"
	"github.com/hyperengineering/searchbridge/internal/metrics"
	"github.com/hyperengineering/searchbridge/internal/snapshot"
	"github.com/hyperengineering/searchbridge/internal/txn"
	"github.com/hyperengineering/searchbridge/internal/types"
	"github.com/hyperengineering/searchbridge/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	catalog  *catalog.Catalog
	ddl      *ddl.Service
	locks    *txn.LockManager
	uploader snapshot.Uploader
	apiKey   string
	version  string
}

// NewHandler creates a new Handler. A nil uploader disables snapshot links.
func NewHandler(c *catalog.Catalog, svc *ddl.Service, locks *txn.LockManager, u snapshot.Uploader, apiKey, version string) *Handler {
	if u == nil {
		u = &snapshot.NoopUploader{}
	}
	return &Handler{
		catalog:  c,
		ddl:      svc,
		locks:    locks,
		uploader: u,
		apiKey:   apiKey,
		version:  version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "component", "api", "error", err)
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	version, err := h.catalog.SchemaVersion()
	if err != nil {
		MapError(w, r, err)
		return
	}
	indexes, err := h.ddl.ListIndexes(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Database:      h.catalog.Name(),
		IndexCount:    len(indexes),
		HeldLocks:     h.locks.Held(),
		SchemaVersion: version,
	})
}

// CompileTerm handles POST /api/v1/dsl/term
func (h *Handler) CompileTerm(w http.ResponseWriter, r *http.Request) {
	var req types.TermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateTermRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	kind, err := dsl.ParseKind(req.Type)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	text, err := literalText(req.Value)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	value, err := dsl.ParseValue(kind, text)
	if err != nil {
		WriteProblemWithErrors(w, r, "Value does not parse as "+kind.String(), []validation.ValidationError{
			{Field: "value", Message: err.Error()},
		})
		return
	}

	boost := dsl.NoBoost
	if req.Boost != nil {
		boost = dsl.WithBoost(*req.Boost)
	}
	query := dsl.Term(req.Field, value, boost)
	metrics.TermQueries.WithLabelValues(kind.String()).Inc()

	body, err := termEnvelope(kind, query)
	if err != nil {
		MapError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// literalText turns the request value into the text handed to the literal
// parser. JSON strings are unquoted, other scalars are taken verbatim.
func literalText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

// termEnvelope wraps a compiled predicate as {"kind":..,"query":..}. The
// predicate is spliced in raw so non-finite floats survive.
func termEnvelope(kind dsl.Kind, q dsl.Query) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "kind", kind.String())
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(body, "query", q.Bytes())
}

// Snapshot handles GET /api/v1/snapshot
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	url, expires, err := h.uploader.PresignedURL(r.Context(), h.catalog.Name())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.SnapshotResponse{URL: url, ExpiresAt: expires})
}
