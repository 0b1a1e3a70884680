package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractguide/internal/assets"
	"contractguide/pkg/platform/sentinel"
)

type unreachableOrigin struct{}

func (unreachableOrigin) Fetch(context.Context, string) (assets.Asset, error) {
	return assets.Asset{}, fmt.Errorf("dial origin: %w", sentinel.ErrUnavailable)
}

func newTestServer(t *testing.T, origin assets.Origin, manifest assets.Manifest) (http.Handler, *assets.Cache) {
	t.Helper()
	cache, err := assets.NewCache(manifest, assets.NewMemoryStore(), origin)
	require.NoError(t, err)

	r := chi.NewRouter()
	New(cache, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r, cache
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandleAsset(t *testing.T) {
	files := fstest.MapFS{
		"index.html":  {Data: []byte("<!doctype html>")},
		"style.css":   {Data: []byte("body{}")},
		"script.js":   {Data: []byte("main()")},
		"css/app.css": {Data: []byte("p{}")},
	}
	manifest := assets.Manifest{Version: "contract-guide-v2", Assets: []string{"/", "/style.css"}}
	router, cache := newTestServer(t, assets.NewDirOrigin(files), manifest)
	require.NoError(t, cache.Install(context.Background()))

	t.Run("cached asset", func(t *testing.T) {
		w := get(router, "/assets/style.css")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "body{}", w.Body.String())
		assert.Equal(t, "cache", w.Header().Get("X-Asset-Source"))
		assert.Equal(t, "contract-guide-v2", w.Header().Get("X-Asset-Version"))
		assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	})

	t.Run("root", func(t *testing.T) {
		for _, target := range []string{"/assets", "/assets/"} {
			w := get(router, target)
			require.Equal(t, http.StatusOK, w.Code, target)
			assert.Equal(t, "<!doctype html>", w.Body.String())
			assert.Equal(t, "cache", w.Header().Get("X-Asset-Source"))
		}
	})

	t.Run("uncached asset comes from the network", func(t *testing.T) {
		w := get(router, "/assets/script.js")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "network", w.Header().Get("X-Asset-Source"))
		assert.Equal(t, "6", w.Header().Get("Content-Length"))
	})

	t.Run("unknown asset", func(t *testing.T) {
		w := get(router, "/assets/missing.png")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("directory is not found", func(t *testing.T) {
		w := get(router, "/assets/css")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleAsset_UnavailableOffline(t *testing.T) {
	manifest := assets.Manifest{Version: "contract-guide-v2", Assets: []string{"/"}}
	router, _ := newTestServer(t, unreachableOrigin{}, manifest)

	w := get(router, "/assets/index.html")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["error"])
	assert.Equal(t, "unavailable offline: /index.html", body["error_description"])
}
