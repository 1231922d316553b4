package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	handler := limiter.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	call := func(subject string) int {
		req := httptest.NewRequest(http.MethodPut, "/api/matches/x/result", nil)
		if subject != "" {
			req = req.WithContext(WithIdentity(req.Context(), models.Identity{Subject: subject}))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("alice"))
	assert.Equal(t, http.StatusNoContent, call("alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))
	assert.Equal(t, http.StatusNoContent, call("bob"), "limits are per subject")
	assert.Equal(t, http.StatusNoContent, call(""), "anonymous callers are keyed by address")

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("alice"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	limiter.allow("sub:alice")
	clock = clock.Add(limiterIdleTTL + time.Minute)
	limiter.allow("sub:carol")

	limiter.mu.Lock()
	assert.Len(t, limiter.visitors, 2, "requests do not evict")
	limiter.mu.Unlock()

	assert.Equal(t, 1, limiter.Sweep())
	limiter.mu.Lock()
	_, kept := limiter.visitors["sub:alice"]
	_, active := limiter.visitors["sub:carol"]
	limiter.mu.Unlock()
	assert.False(t, kept, "idle visitors are evicted")
	assert.True(t, active)
	assert.Zero(t, limiter.Sweep())
}

func TestScheduleSweep(t *testing.T) {
	sched, err := gocron.NewScheduler()
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	job, err := ScheduleSweep(sched, NewRateLimiter(1, 1), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "rate-limiter-sweep", job.Name())
}
