package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, r, http.StatusTeapot, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"hello":"world"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	log, buf := logger.NewTestLogger(t)
	ctx := logger.WithLogger(WithTraceID(t.Context(), "trace-123"), log)
	r := httptest.NewRequest(http.MethodPost, "/api/things", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Something went wrong",
		errors.New("pq: secret connection details"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Something went wrong", resp.Error)
	assert.Equal(t, "trace-123", resp.TraceID)
	assert.NotContains(t, w.Body.String(), "secret")

	assert.True(t, buf.HasEntry("API error response", map[string]interface{}{
		"level":       "ERROR",
		"trace_id":    "trace-123",
		"status_code": float64(http.StatusInternalServerError),
	}))
}

func TestRespondWithErrorAndLog_LevelSelection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		opts   []ResponseOption
		level  string
	}{
		{"client error", http.StatusBadRequest, nil, "DEBUG"},
		{"elevated client error", http.StatusConflict, []ResponseOption{WithElevatedLogLevel()}, "WARN"},
		{"rate limited", http.StatusTooManyRequests, nil, "WARN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := logger.NewTestLogger(t)
			r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(logger.WithLogger(t.Context(), log))

			RespondWithErrorAndLog(httptest.NewRecorder(), r, tt.status, "msg", nil, tt.opts...)

			assert.True(t, buf.HasEntry("API error response", map[string]interface{}{"level": tt.level}))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &v))
	assert.Equal(t, "Ana", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), r, &v), ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), r, &v))
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(t.Context()))

	ctx := SetTraceID(t.Context())
	id := GetTraceID(ctx)
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(t.Context())))
}
