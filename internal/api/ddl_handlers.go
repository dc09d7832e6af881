package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/ddl"
	"github.com/hyperengineering/searchbridge/internal/types"
	"github.com/hyperengineering/searchbridge/internal/validation"
)

// decodeValid decodes the body into req and runs validate. It writes the
// problem response and returns false on failure.
func decodeValid[T any](w http.ResponseWriter, r *http.Request, req *T, validate func(T) []validation.ValidationError) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return false
	}
	if errs := validate(*req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return false
	}
	return true
}

// CreateExtension handles POST /api/v1/extensions
func (h *Handler) CreateExtension(w http.ResponseWriter, r *http.Request) {
	var req types.CreateExtensionRequest
	if !decodeValid(w, r, &req, validation.ValidateCreateExtensionRequest) {
		return
	}
	ext, err := h.ddl.CreateExtension(r.Context(), req.Name, req.Version)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ext)
}

// CreateSchema handles POST /api/v1/schemas
func (h *Handler) CreateSchema(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSchemaRequest
	if !decodeValid(w, r, &req, validation.ValidateCreateSchemaRequest) {
		return
	}
	ns, err := h.ddl.CreateSchema(r.Context(), req.Name)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ns)
}

// CreateTable handles POST /api/v1/tables
func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req types.CreateTableRequest
	if !decodeValid(w, r, &req, validation.ValidateCreateTableRequest) {
		return
	}
	rel, err := h.ddl.CreateTable(r.Context(), req.Schema, req.Name)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

// CreateIndex handles POST /api/v1/indexes
func (h *Handler) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req types.CreateIndexRequest
	if !decodeValid(w, r, &req, validation.ValidateCreateIndexRequest) {
		return
	}
	rel, err := h.ddl.CreateIndex(r.Context(), req.Schema, req.Table, req.Name, req.AccessMethod, req.Options)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

// ListIndexes handles GET /api/v1/indexes
func (h *Handler) ListIndexes(w http.ResponseWriter, r *http.Request) {
	indexes, err := h.ddl.ListIndexes(r.Context())
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.IndexListResponse{Indexes: indexes})
}

// DropIndex handles DELETE /api/v1/indexes/{oid}
func (h *Handler) DropIndex(w http.ResponseWriter, r *http.Request) {
	h.dropByOID(w, r, h.ddl.DropIndex)
}

// DropTable handles DELETE /api/v1/tables/{oid}
func (h *Handler) DropTable(w http.ResponseWriter, r *http.Request) {
	h.dropByOID(w, r, h.ddl.DropTable)
}

// DropSchema handles DELETE /api/v1/schemas/{oid}
func (h *Handler) DropSchema(w http.ResponseWriter, r *http.Request) {
	h.dropByOID(w, r, h.ddl.DropSchema)
}

// DropExtension handles DELETE /api/v1/extensions/{name}
func (h *Handler) DropExtension(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if verr := validation.ValidateIdentifier("name", name); verr != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*verr})
		return
	}
	res, err := h.ddl.DropExtension(r.Context(), name)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) dropByOID(w http.ResponseWriter, r *http.Request,
	drop func(ctx context.Context, oid catalog.OID) (*ddl.DropResult, error)) {
	oid, err := strconv.ParseInt(chi.URLParam(r, "oid"), 10, 64)
	if err != nil || oid <= 0 {
		WriteProblem(w, r, http.StatusBadRequest, "oid must be a positive integer")
		return
	}
	res, err := drop(r.Context(), catalog.OID(oid))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
