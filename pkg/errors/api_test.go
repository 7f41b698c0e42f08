package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-openapi/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Count  int    `json:"count"`
	Detail string `json:"detail"`
}

func serve(t *testing.T, method string, err error) (*httptest.ResponseRecorder, body) {
	t.Helper()
	rec := httptest.NewRecorder()
	ServeError(rec, httptest.NewRequest(method, "/api/v1/config", nil), err)
	var b body
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	}
	return rec, b
}

func TestServeError_Validation(t *testing.T) {
	rec, b := serve(t, http.MethodPost, errors.ExceedsMaximum("recent_jobs_count", "body", 50, false, 51))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, -1, b.Count)
	assert.Contains(t, b.Detail, "recent_jobs_count")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestServeError_CompositeIsFlattened(t *testing.T) {
	inner := errors.CompositeValidationError(
		errors.Required("clusters", "body", nil),
		errors.EnumFail("refresh_interval", "body", 7, []interface{}{0, 5, 10, 30, 60}),
	)
	rec, b := serve(t, http.MethodPost, errors.CompositeValidationError(inner))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, b.Detail, "clusters")
	assert.Contains(t, b.Detail, "refresh_interval")
}

func TestServeError_EmptyComposite(t *testing.T) {
	rec, b := serve(t, http.MethodGet, errors.CompositeValidationError())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Unknown error", b.Detail)
}

func TestServeError_NotFound(t *testing.T) {
	rec, b := serve(t, http.MethodGet, errors.NotFound("job %s not found", "42"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "job 42 not found", b.Detail)
}

func TestServeError_MethodNotAllowed(t *testing.T) {
	rec, _ := serve(t, http.MethodHead, errors.MethodNotAllowed("DELETE", []string{"GET", "POST"}))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET,POST", rec.Header().Get("Allow"))
	assert.Zero(t, rec.Body.Len())
}

func TestServeError_PlainError(t *testing.T) {
	rec, b := serve(t, http.MethodGet, stderrors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", b.Detail)
}
