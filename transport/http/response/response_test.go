package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel/shared/failure"
	"hotel/transport/http/response"
)

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusCreated, map[string]string{"reference": "NCH-3F9A1C0B7D"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"reference":"NCH-3F9A1C0B7D"}}`, rec.Body.String())
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "failure keeps its message",
			err:      failure.Conflict("room is not available for the selected dates"),
			wantCode: http.StatusConflict,
			wantBody: `{"code":409,"message":"room is not available for the selected dates"}`,
		},
		{
			name:     "internal errors are masked",
			err:      errors.New(`pq: relation "bookings" does not exist`),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"code":500,"message":"Internal Server Error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			response.WithError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRouteFallbacks(t *testing.T) {
	rec := httptest.NewRecorder()
	response.WithRouteNotFound(rec, httptest.NewRequest(http.MethodGet, "/v1/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	response.WithMethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/v1/rooms/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
