package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/snapshot"
	"github.com/hyperengineering/searchbridge/internal/txn"
	"github.com/hyperengineering/searchbridge/internal/validation"
)

func TestWriteProblem(t *testing.T) {
	tests := []struct {
		status int
		uri    string
		title  string
	}{
		{http.StatusBadRequest, "https://searchbridge.dev/errors/bad-request", "Bad Request"},
		{http.StatusUnauthorized, "https://searchbridge.dev/errors/unauthorized", "Unauthorized"},
		{http.StatusNotFound, "https://searchbridge.dev/errors/not-found", "Not Found"},
		{http.StatusConflict, "https://searchbridge.dev/errors/conflict", "Conflict"},
		{http.StatusUnprocessableEntity, "https://searchbridge.dev/errors/validation-error", "Validation Error"},
		{http.StatusTooManyRequests, "https://searchbridge.dev/errors/rate-limit", "Too Many Requests"},
		{http.StatusServiceUnavailable, "https://searchbridge.dev/errors/service-unavailable", "Service Unavailable"},
		{http.StatusTeapot, "https://searchbridge.dev/errors/unknown", "I'm a teapot"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteProblem(w, httptest.NewRequest(http.MethodGet, "/api/v1/indexes", nil), tt.status, "something happened")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var p Problem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
			assert.Equal(t, Problem{
				Type:     tt.uri,
				Title:    tt.title,
				Status:   tt.status,
				Detail:   "something happened",
				Instance: "/api/v1/indexes",
			}, p)
		})
	}
}

func TestWriteProblemWithErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/indexes", nil)

	WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{
		{Field: "name", Message: "is required"},
		{Field: "access_method", Message: "is required"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"type": "https://searchbridge.dev/errors/validation-error",
		"title": "Validation Error",
		"status": 422,
		"detail": "Request contains invalid fields",
		"instance": "/api/v1/indexes",
		"errors": [
			{"field": "name", "message": "is required"},
			{"field": "access_method", "message": "is required"}
		]
	}`, w.Body.String())
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", fmt.Errorf("index 42: %w", catalog.ErrNotFound), http.StatusNotFound, "index 42: catalog object not found"},
		{"already exists", catalog.ErrAlreadyExists, http.StatusConflict, catalog.ErrAlreadyExists.Error()},
		{"invalid identifier", catalog.ErrInvalidIdentifier, http.StatusBadRequest, catalog.ErrInvalidIdentifier.Error()},
		{"wrong kind", catalog.ErrWrongKind, http.StatusUnprocessableEntity, catalog.ErrWrongKind.Error()},
		{"snapshot storage missing", snapshot.ErrNotConfigured, http.StatusNotFound, "Snapshot storage is not configured"},
		{"transaction finished", txn.ErrTxDone, http.StatusServiceUnavailable, "Catalog is busy, retry later"},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable, "Catalog is busy, retry later"},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, "Catalog is busy, retry later"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t, false)
			w := httptest.NewRecorder()
			MapError(w, httptest.NewRequest(http.MethodDelete, "/api/v1/indexes/42", nil), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var p Problem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
			assert.Equal(t, tt.detail, p.Detail)

			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "disk on fire")
				assert.Contains(t, logs.String(), "disk on fire")
			}
		})
	}
}
