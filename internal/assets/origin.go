package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"contractguide/pkg/platform/circuit"
	"contractguide/pkg/platform/sentinel"
)

// maxAssetBytes bounds a single fetched asset.
const maxAssetBytes = 8 << 20

// Origin is where assets come from when they are not cached ("the network").
// Implementations return errors wrapping sentinel.ErrNotFound for missing
// assets and sentinel.ErrUnavailable when the origin cannot be reached.
//
//go:generate mockgen -source=origin.go -destination=mocks/origin-mocks.go -package=mocks Origin
type Origin interface {
	Fetch(ctx context.Context, path string) (Asset, error)
}

// DirOrigin serves assets from a file system, typically os.DirFS of the
// front-end directory. "/" resolves to index.html.
type DirOrigin struct {
	fsys fs.FS
}

func NewDirOrigin(fsys fs.FS) *DirOrigin {
	return &DirOrigin{fsys: fsys}
}

func (o *DirOrigin) Fetch(ctx context.Context, p string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, errors.Join(sentinel.ErrUnavailable, err))
	}
	p = NormalizePath(p)
	name := strings.TrimPrefix(p, "/")
	if name == "" {
		name = "index.html"
	}

	info, err := fs.Stat(o.fsys, name)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, sentinel.ErrNotFound)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, errors.Join(sentinel.ErrUnavailable, err))
	}
	// Directories are not assets.
	if info.IsDir() {
		return Asset{}, fmt.Errorf("fetch %s: is a directory: %w", p, sentinel.ErrNotFound)
	}

	body, err := fs.ReadFile(o.fsys, name)
	if err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, errors.Join(sentinel.ErrUnavailable, err))
	}
	return Asset{Path: p, ContentType: contentTypeFor(name), Body: body}, nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// HTTPOrigin fetches assets from a base URL.
type HTTPOrigin struct {
	base    *url.URL
	client  *http.Client
	breaker *circuit.Breaker
}

type HTTPOriginOption func(*HTTPOrigin)

// WithHTTPClient overrides the default client (10s timeout).
func WithHTTPClient(c *http.Client) HTTPOriginOption {
	return func(o *HTTPOrigin) {
		o.client = c
	}
}

// WithBreaker stops calling the origin while it keeps failing. Fetches fail
// fast with sentinel.ErrUnavailable until the breaker lets a probe through.
func WithBreaker(b *circuit.Breaker) HTTPOriginOption {
	return func(o *HTTPOrigin) {
		o.breaker = b
	}
}

// NewHTTPOrigin builds an origin rooted at baseURL.
func NewHTTPOrigin(baseURL string, opts ...HTTPOriginOption) (*HTTPOrigin, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse asset origin URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("asset origin URL must be http or https: %q", baseURL)
	}
	o := &HTTPOrigin{
		base:   u,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *HTTPOrigin) Fetch(ctx context.Context, p string) (Asset, error) {
	p = NormalizePath(p)
	if o.breaker == nil {
		return o.fetch(ctx, p)
	}
	if !o.breaker.Allow() {
		return Asset{}, fmt.Errorf("fetch %s: %s circuit open: %w", p, o.breaker.Name(), sentinel.ErrUnavailable)
	}

	asset, err := o.fetch(ctx, p)
	switch {
	case ctx.Err() != nil:
		// The caller gave up; says nothing about the origin.
	case errors.Is(err, sentinel.ErrUnavailable):
		o.breaker.RecordFailure()
	default:
		o.breaker.RecordSuccess()
	}
	return asset, err
}

func (o *HTTPOrigin) fetch(ctx context.Context, p string) (Asset, error) {
	target := o.base.JoinPath(p)
	if p == "/" {
		target.Path = strings.TrimSuffix(target.Path, "/") + "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, errors.Join(sentinel.ErrUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Asset{}, fmt.Errorf("fetch %s: %w", p, sentinel.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return Asset{}, fmt.Errorf("fetch %s: status %d: %w", p, resp.StatusCode, sentinel.ErrUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", p, errors.Join(sentinel.ErrUnavailable, err))
	}
	if len(body) > maxAssetBytes {
		return Asset{}, fmt.Errorf("fetch %s: asset exceeds %d bytes", p, maxAssetBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFor(p)
	}
	return Asset{Path: p, ContentType: contentType, Body: body}, nil
}
