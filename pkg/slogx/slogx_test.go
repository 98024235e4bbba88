package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	require.Equal(t, slog.Default(), slogx.FromContext(context.Background()))

	l, _ := captureLogger()
	ctx := slogx.WithContext(context.Background(), l)
	require.Equal(t, l, slogx.FromContext(ctx))
}

func TestAuditAt(t *testing.T) {
	l, buf := captureLogger()
	ctx := slogx.WithContext(context.Background(), l)

	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	slogx.AuditAt(ctx, at, slogx.AuditEvent{
		Action:         "member.remove",
		UserID:         "u1",
		OrganizationID: "o1",
		Outcome:        slogx.OutcomeDeny,
		Reason:         "self_action_forbidden",
	})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, true, rec["audit"])
	require.Equal(t, "member.remove", rec["action"])
	require.Equal(t, "deny", rec["outcome"])
	require.Equal(t, "u1", rec["user_id"])
	require.Equal(t, "o1", rec["organization_id"])
	require.Equal(t, "self_action_forbidden", rec["reason"])
	require.Equal(t, "INFO", rec["level"])
}

func TestHTTPMiddleware(t *testing.T) {
	l, buf := captureLogger()

	var sawLogger bool
	h := slogx.HTTPMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = slogx.FromContext(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, sawLogger)
	require.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["msg"])
	require.Equal(t, float64(http.StatusTeapot), line["status"])
	require.Equal(t, "req-1", line["req_id"])
}

func TestWithAnnotatesAccessLog(t *testing.T) {
	l, buf := captureLogger()

	h := slogx.HTTPMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := slogx.With(r.Context(), "user_id", "u-7")
		slogx.FromContext(ctx).Info("handled")
		w.WriteHeader(http.StatusNoContent)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/v1/members/m1", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, raw := range lines {
		var line map[string]any
		require.NoError(t, json.Unmarshal(raw, &line))
		require.Equal(t, "u-7", line["user_id"], "line %s", raw)
	}

	// Outside a request With only scopes the returned context.
	ctx := slogx.With(slogx.WithContext(context.Background(), l), "organization_id", "o1")
	require.NotEqual(t, l, slogx.FromContext(ctx))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("nonsense"))
}
