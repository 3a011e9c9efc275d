package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFetcher() *Fetcher {
	return NewWithConfig(Config{
		UserAgent:  "pmcoords-test",
		DelayFloor: 0,
		DelayMean:  time.Millisecond,
		RateLimit:  1000,
	}, testLogger())
}

func TestFetchWritesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>article</html>"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "article.html")
	err := testFetcher().Fetch(context.Background(), server.URL, dest)
	require.NoError(t, err)

	body, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "<html>article</html>", string(body))
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var userAgent, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, testFetcher().Fetch(context.Background(), server.URL, dest))

	assert.Equal(t, "pmcoords-test", userAgent)
	assert.Contains(t, accept, "text/html")
}

func TestFetchIsIdempotent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	f := testFetcher()
	dest := filepath.Join(t.TempDir(), "page.html")

	require.NoError(t, f.Fetch(context.Background(), server.URL, dest))
	require.NoError(t, f.Fetch(context.Background(), server.URL, dest))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second fetch must be a pure cache hit")
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "missing.html")
	err := testFetcher().Fetch(context.Background(), server.URL, dest)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file may be written on failure")
}

func TestDelayRespectsFloor(t *testing.T) {
	f := NewWithConfig(Config{
		DelayFloor: 50 * time.Millisecond,
		DelayMean:  100 * time.Millisecond,
		RateLimit:  1000,
	}, testLogger())

	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, f.delay(), 50*time.Millisecond)
	}
}

func TestFetchDoesNotSleepOnCacheHit(t *testing.T) {
	f := testFetcher()
	var slept bool
	f.sleep = func(time.Duration) { slept = true }

	dest := filepath.Join(t.TempDir(), "cached.html")
	require.NoError(t, os.WriteFile(dest, []byte("cached"), 0644))

	require.NoError(t, f.Fetch(context.Background(), "http://unreachable.invalid/", dest))
	assert.False(t, slept)
}
