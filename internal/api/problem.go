package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/snapshot"
	"github.com/hyperengineering/searchbridge/internal/txn"
	"github.com/hyperengineering/searchbridge/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	uri   string
	title string
}

const problemBase = "https://searchbridge.dev/errors/"

var problemTypes = map[int]problemType{
	http.StatusBadRequest:          {problemBase + "bad-request", "Bad Request"},
	http.StatusUnauthorized:        {problemBase + "unauthorized", "Unauthorized"},
	http.StatusNotFound:            {problemBase + "not-found", "Not Found"},
	http.StatusConflict:            {problemBase + "conflict", "Conflict"},
	http.StatusUnprocessableEntity: {problemBase + "validation-error", "Validation Error"},
	http.StatusTooManyRequests:     {problemBase + "rate-limit", "Too Many Requests"},
	http.StatusInternalServerError: {problemBase + "internal-error", "Internal Server Error"},
	http.StatusServiceUnavailable:  {problemBase + "service-unavailable", "Service Unavailable"},
}

func newProblem(r *http.Request, status int, detail string) Problem {
	pt, ok := problemTypes[status]
	if !ok {
		pt = problemType{problemBase + "unknown", http.StatusText(status)}
	}
	return Problem{
		Type:     pt.uri,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

func encodeProblem(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "component", "api", "error", err)
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	encodeProblem(w, status, newProblem(r, status, detail))
}

// ProblemWithErrors is a validation problem listing each failed field.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 problem carrying field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	status := http.StatusUnprocessableEntity
	encodeProblem(w, status, ProblemWithErrors{Problem: newProblem(r, status, detail), Errors: errs})
}

// MapError converts domain errors to Problem Details responses.
func MapError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrAlreadyExists):
		WriteProblem(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrInvalidIdentifier):
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrWrongKind):
		WriteProblem(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, snapshot.ErrNotConfigured):
		WriteProblem(w, r, http.StatusNotFound, "Snapshot storage is not configured")
	case errors.Is(err, txn.ErrTxDone),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		WriteProblem(w, r, http.StatusServiceUnavailable, "Catalog is busy, retry later")
	default:
		slog.Error("request failed",
			"component", "api",
			"path", r.URL.Path,
			"error", err,
		)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}
