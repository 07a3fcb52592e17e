package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/swordgame-go/internal/model"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown connection", model.ErrUnknownConnection, http.StatusNotFound, CodePlayerNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", model.ErrPlayerNotFound), http.StatusNotFound, CodePlayerNotFound},
		{"invalid level", model.ErrInvalidLevel, http.StatusBadRequest, CodeInvalidLevel},
		{"stopped", model.ErrDispatcherStopped, http.StatusServiceUnavailable, CodeServiceUnavailable},
		{"invalid request", NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{"route not found", NewNotFoundError(), http.StatusNotFound, CodeNotFound},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestInternalErrorsDoNotLeakDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("redis: connection refused at 10.0.0.5"))

	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}

func TestFromPassesThroughRenderedErrors(t *testing.T) {
	e := From(fmt.Errorf("route: %w", NewNotFoundError()))
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, CodeNotFound, e.Body.Code)
}

func TestErrorResponsesAreNotCached(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.ErrInvalidLevel)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}
