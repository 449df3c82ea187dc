package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = stderrors.New("NO_TOOL_CALL")

func TestStandardError_UnwrapKeepsSentinel(t *testing.T) {
	err := fmt.Errorf("plan: %w", NewPlanningFailedError(errSentinel))

	assert.True(t, stderrors.Is(err, errSentinel))
	assert.Equal(t, ErrCodePlanningFailed, AsStandardError(err).Code)
	assert.Equal(t, "NO_TOOL_CALL", AsStandardError(err).Details)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("Empty query"), http.StatusBadRequest},
		{"planning", NewPlanningFailedError(errSentinel), http.StatusInternalServerError},
		{"upstream", NewUpstreamAPIError(503, errSentinel), http.StatusBadGateway},
		{"database", NewDatabaseError("insert", errSentinel), http.StatusInternalServerError},
		{"plain", errSentinel, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUpstreamStatus(t *testing.T) {
	assert.Equal(t, 429, UpstreamStatus(fmt.Errorf("wrap: %w", NewUpstreamAPIError(429, errSentinel))))
	assert.Equal(t, 0, UpstreamStatus(NewPlanningFailedError(errSentinel)))
	assert.Equal(t, 0, UpstreamStatus(errSentinel))
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewUpstreamAPIError(500, errSentinel))

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "UPSTREAM_API_FAILED", bpmn.Code)
	assert.Equal(t, "UPSTREAM_API_FAILED", vars["errorCode"])
	assert.Equal(t, 500, vars["upstreamStatus"])
	assert.NotEmpty(t, vars["timestamp"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodePlanningFailed))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeCache))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
