package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractguide/pkg/platform/circuit"
	"contractguide/pkg/platform/sentinel"
)

func TestDirOrigin(t *testing.T) {
	origin := NewDirOrigin(fstest.MapFS{
		"index.html":        {Data: []byte("<!doctype html>")},
		"style.css":         {Data: []byte("body{}")},
		"icon-192x192.png":  {Data: []byte{0x89, 'P', 'N', 'G'}},
		"sub/data.unknown1": {Data: []byte("?")},
	})
	ctx := context.Background()

	t.Run("root resolves to index", func(t *testing.T) {
		a, err := origin.Fetch(ctx, "./")
		require.NoError(t, err)
		assert.Equal(t, "/", a.Path)
		assert.Equal(t, "<!doctype html>", string(a.Body))
		assert.True(t, strings.HasPrefix(a.ContentType, "text/html"), a.ContentType)
	})

	t.Run("content type by extension", func(t *testing.T) {
		a, err := origin.Fetch(ctx, "/style.css")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(a.ContentType, "text/css"), a.ContentType)

		a, err = origin.Fetch(ctx, "icon-192x192.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", a.ContentType)

		a, err = origin.Fetch(ctx, "sub/data.unknown1")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", a.ContentType)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := origin.Fetch(ctx, "/script.js")
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("directory is not an asset", func(t *testing.T) {
		_, err := origin.Fetch(ctx, "/sub")
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := origin.Fetch(cctx, "/style.css")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHTTPOrigin(t *testing.T) {
	var (
		mu        sync.Mutex
		requested []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/app/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html>"))
		case "/app/script.js":
			w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
			_, _ = w.Write([]byte("console.log(1)"))
		case "/app/broken.css":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	origin, err := NewHTTPOrigin(srv.URL+"/app", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := origin.Fetch(ctx, "./")
	require.NoError(t, err)
	assert.Equal(t, "/", a.Path)
	assert.Equal(t, "<html>", string(a.Body))

	a, err = origin.Fetch(ctx, "./script.js")
	require.NoError(t, err)
	assert.Equal(t, "/script.js", a.Path)
	assert.Equal(t, "text/javascript; charset=utf-8", a.ContentType)

	_, err = origin.Fetch(ctx, "/missing.png")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = origin.Fetch(ctx, "/broken.css")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Contains(t, err.Error(), "status 502")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/app/", "/app/script.js", "/app/missing.png", "/app/broken.css"}, requested)
}

func TestHTTPOrigin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	origin, err := NewHTTPOrigin(url)
	require.NoError(t, err)
	_, err = origin.Fetch(context.Background(), "/index.html")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestNewHTTPOrigin_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPOrigin("ftp://example.org/assets")
	assert.Error(t, err)
	_, err = NewHTTPOrigin("://nope")
	assert.Error(t, err)
}

func TestHTTPOrigin_Breaker(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
		down  = true
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		switch {
		case down:
			w.WriteHeader(http.StatusBadGateway)
		case r.URL.Path == "/missing.png":
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))
	t.Cleanup(srv.Close)

	breaker := circuit.New("asset-origin", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1), circuit.WithCooldown(time.Hour))
	origin, err := NewHTTPOrigin(srv.URL, WithBreaker(breaker))
	require.NoError(t, err)
	ctx := context.Background()

	for range 2 {
		_, err = origin.Fetch(ctx, "/style.css")
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	}
	require.True(t, breaker.IsOpen())

	_, err = origin.Fetch(ctx, "/style.css")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Contains(t, err.Error(), "circuit open")
	mu.Lock()
	assert.Equal(t, 2, calls, "open circuit must not reach the origin")
	down = false
	mu.Unlock()

	// A missing asset is a healthy answer and clears the failure run.
	breaker.Reset()
	breaker.RecordFailure()
	_, err = origin.Fetch(ctx, "/missing.png")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	breaker.RecordFailure()
	assert.False(t, breaker.IsOpen())

	asset, err := origin.Fetch(ctx, "/style.css")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(asset.Body))
}
