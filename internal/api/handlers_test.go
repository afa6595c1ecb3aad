package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasswatch/internal/config"
	"grasswatch/internal/types"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type stubSource struct {
	result types.ModelResult
	ok     bool
	status types.CycleStatus
}

func (s *stubSource) Last() (types.ModelResult, bool) { return s.result, s.ok }
func (s *stubSource) Status() types.CycleStatus       { return s.status }

type stubHub struct{ err error }

func (h *stubHub) Ping(ctx context.Context) error { return h.err }

func newTestServer(source StateSource, hub HubPinger, clock types.Clock) *Server {
	return NewServer(ServerConfig{
		Config: config.ServerConfig{Port: "8080", ShutdownTimeout: time.Second},
		Poll:   config.PollConfig{Interval: 5 * time.Minute, StaleAfter: 20 * time.Minute},
		Source: source,
		Hub:    hub,
		Clock:  clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleState_ReturnsLatestResult(t *testing.T) {
	observed := time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
	source := &stubSource{
		result: types.ModelResult{Moisture: 0.412, DewPointC: 11.7, ObservedAt: observed},
		ok:     true,
		status: types.CycleStatus{Cycles: 42, Failures: 3, LastSuccess: observed},
	}
	s := newTestServer(source, &stubHub{}, stubClock{observed})

	rec := doRequest(t, s, http.MethodGet, "/v1/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data stateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.412, resp.Data.Moisture)
	assert.Equal(t, 11.7, resp.Data.DewPointC)
	assert.True(t, observed.Equal(resp.Data.ObservedAt))
	assert.Equal(t, uint64(42), resp.Data.Cycle.Cycles)
	assert.Equal(t, uint64(3), resp.Data.Cycle.Failures)
}

func TestHandleState_NotFoundBeforeFirstCycle(t *testing.T) {
	s := newTestServer(&stubSource{}, &stubHub{}, stubClock{time.Now()})

	rec := doRequest(t, s, http.MethodGet, "/v1/state")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeNotFoundState), resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestHandleHealth_Healthy(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
	source := &stubSource{status: types.CycleStatus{LastSuccess: now.Add(-5 * time.Minute)}}
	s := newTestServer(source, &stubHub{}, stubClock{now})

	rec := doRequest(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["hub"].Status)
	assert.Equal(t, "healthy", resp.Components["cycle"].Status)
}

func TestHandleHealth_StaleCycle(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 0, 0, 0, time.UTC)
	source := &stubSource{status: types.CycleStatus{LastSuccess: now.Add(-time.Hour)}}
	s := newTestServer(source, &stubHub{}, stubClock{now})

	rec := doRequest(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "healthy", resp.Components["hub"].Status)
	assert.Contains(t, resp.Components["cycle"].Message, "old")
}

func TestHandleHealth_NoCycleYet(t *testing.T) {
	s := newTestServer(&stubSource{}, &stubHub{}, stubClock{time.Now()})

	rec := doRequest(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Components["cycle"].Status)
}

func TestHandleHealth_HubUnreachable(t *testing.T) {
	now := time.Now()
	hubErr := types.NewAppError(types.ErrCodeUpstreamHubUnavailable, "connection refused", nil)
	source := &stubSource{status: types.CycleStatus{LastSuccess: now}}
	s := newTestServer(source, &stubHub{err: hubErr}, stubClock{now})

	rec := doRequest(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Components["hub"].Status)
	assert.Equal(t, "healthy", resp.Components["cycle"].Status)
}

func TestRequestIDMiddleware_EchoesClientID(t *testing.T) {
	s := newTestServer(&stubSource{}, &stubHub{}, stubClock{time.Now()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	req.Header.Set("X-Request-Id", "client-supplied-id")
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied-id", rec.Header().Get("X-Request-Id"))

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "client-supplied-id", resp.Error.RequestID)
}

func TestRequestIDMiddleware_MintsWhenAbsent(t *testing.T) {
	s := newTestServer(&stubSource{}, &stubHub{}, stubClock{time.Now()})

	rec := doRequest(t, s, http.MethodGet, "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRecoverer_PanicBecomesEnvelope(t *testing.T) {
	s := newTestServer(&stubSource{}, &stubHub{}, stubClock{time.Now()})
	s.router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := doRequest(t, s, http.MethodGet, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(types.ErrCodeInternalUnexpected), resp.Error.Code)
}
