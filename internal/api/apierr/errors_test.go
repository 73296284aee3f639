package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
	"github.com/dojosmash/dojo-smash/internal/storage"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("loading: %w", model.ErrWagerNotFound), http.StatusNotFound},
		{model.ErrUserNameTaken, http.StatusConflict},
		{model.ErrDojosAlreadyRegistered, http.StatusConflict},
		{model.ErrWagerNotPending, http.StatusConflict},
		{storage.ErrConflict, http.StatusConflict},
		{model.ErrInvalidStake, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", model.ErrUnknownCategory, "total"), http.StatusBadRequest},
		{model.NewValidationError("monto", "must be a number"), http.StatusBadRequest},
		{auth.ErrInvalidSession, http.StatusUnauthorized},
		{NewInvalidRequestError("bad"), http.StatusBadRequest},
		{fmt.Errorf("redis: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestWriteErrorBody(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/usuarios/x", nil)

	WriteError(rr, req, fmt.Errorf("%w: %q", model.ErrUnknownAvatar, "sonic"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, CodeUnknownAvatar, body.Code)
	assert.Contains(t, body.Message, "sonic")
}

func TestInternalErrorsHideDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/banco", nil)

	WriteError(rr, req, fmt.Errorf("mongo: secret connection string"))

	var body APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, CodeInternalError, body.Code)
	assert.NotContains(t, body.Message, "secret")
}
