package assets

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"contractguide/internal/assets/metrics"
	dErrors "contractguide/pkg/domain-errors"
	"contractguide/pkg/platform/sentinel"
)

// installConcurrency bounds parallel origin fetches during Install.
const installConcurrency = 4

// Source tells which side answered a Serve call.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
)

// Cache is the versioned asset cache. Install and Activate follow the
// install-then-activate order: a version is fully stored before any other
// version is deleted.
type Cache struct {
	store   Store
	origin  Origin
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	manifest Manifest
	// installed is the last version fully written to the store.
	installed string

	// lifecycle serializes Install, Activate and Update.
	lifecycle sync.Mutex
	fetches   singleflight.Group
}

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// NewCache builds a cache for manifest m over store and origin.
func NewCache(m Manifest, store Store, origin Origin, opts ...Option) (*Cache, error) {
	if store == nil || origin == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "asset store and origin are required")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := &Cache{
		store:    store,
		origin:   origin,
		logger:   slog.New(slog.DiscardHandler),
		manifest: cloneManifest(m),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Version returns the active version string.
func (c *Cache) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manifest.Version
}

// Manifest returns a copy of the active manifest.
func (c *Cache) Manifest() Manifest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneManifest(c.manifest)
}

// Install fetches every asset of the active manifest and stores them under
// its version. Any fetch failure aborts before the store is touched.
func (c *Cache) Install(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	m := c.Manifest()
	if err := c.install(ctx, m); err != nil {
		return err
	}
	c.mu.Lock()
	c.installed = m.Version
	c.mu.Unlock()
	return nil
}

// Activate deletes every stored version other than the active one.
func (c *Cache) Activate(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.activate(ctx, c.Version())
}

// Update moves the cache to manifest m: install m, switch to it, then
// activate. The previous version keeps serving until the switch, and stays
// in place if the install fails. A manifest with the active version is a
// no-op once that version is installed; until then it retries the install.
// It reports whether a version was installed.
func (c *Cache) Update(ctx context.Context, m Manifest) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, err
	}
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.RLock()
	current, installed := c.manifest.Version, c.installed
	c.mu.RUnlock()
	if m.Version == current && m.Version == installed {
		return false, nil
	}
	if err := c.install(ctx, m); err != nil {
		return false, err
	}

	c.mu.Lock()
	previous := c.manifest.Version
	c.manifest = cloneManifest(m)
	c.installed = m.Version
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "asset version switched",
		"previous_version", previous,
		"version", m.Version,
	)
	return true, c.activate(ctx, m.Version)
}

func (c *Cache) install(ctx context.Context, m Manifest) error {
	fetched := make([]Asset, len(m.Assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(installConcurrency)
	for i, p := range m.Assets {
		g.Go(func() error {
			a, err := c.origin.Fetch(gctx, p)
			if err != nil {
				return err
			}
			a.Path = p
			fetched[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.metrics.IncrementInstall(false)
		c.logger.ErrorContext(ctx, "asset install failed",
			"version", m.Version,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to install asset version "+m.Version)
	}

	if err := c.store.PutVersion(ctx, m.Version, fetched); err != nil {
		c.metrics.IncrementInstall(false)
		c.logger.ErrorContext(ctx, "asset install failed",
			"version", m.Version,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store asset version "+m.Version)
	}

	c.metrics.IncrementInstall(true)
	c.logger.InfoContext(ctx, "asset version installed",
		"version", m.Version,
		"assets", len(fetched),
	)
	return nil
}

func (c *Cache) activate(ctx context.Context, current string) error {
	versions, err := c.store.Versions(ctx)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list asset versions")
	}

	deleted := 0
	for _, v := range versions {
		if v == current {
			continue
		}
		if err := c.store.DeleteVersion(ctx, v); err != nil {
			c.metrics.AddVersionsDeleted(deleted)
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to delete asset version "+v)
		}
		deleted++
	}

	c.metrics.AddVersionsDeleted(deleted)
	c.metrics.SetActiveVersion(current)
	c.logger.InfoContext(ctx, "asset version activated",
		"version", current,
		"deleted_versions", deleted,
	)
	return nil
}

// Serve answers p from the active version when cached, otherwise from the
// origin. Origin responses are never written back to the cache. When the
// origin cannot be reached the error carries CodeUnavailable; an asset the
// origin does not know carries CodeNotFound.
func (c *Cache) Serve(ctx context.Context, p string) (Asset, Source, error) {
	p = NormalizePath(p)
	version := c.Version()

	a, ok, err := c.store.Get(ctx, version, p)
	if err != nil {
		c.logger.WarnContext(ctx, "asset store lookup failed, falling back to origin",
			"version", version,
			"path", p,
			"error", err,
		)
	}
	if ok {
		c.metrics.IncrementRequest(string(SourceCache))
		return a, SourceCache, nil
	}

	// Concurrent misses for one path share a single origin fetch. The fetch
	// is detached from the first caller's cancellation.
	v, err, shared := c.fetches.Do(p, func() (any, error) {
		return c.origin.Fetch(context.WithoutCancel(ctx), p)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			c.metrics.IncrementRequest("not_found")
			return Asset{}, "", dErrors.Wrap(err, dErrors.CodeNotFound, "asset not found: "+p)
		}
		c.metrics.IncrementRequest("unavailable")
		c.logger.WarnContext(ctx, "asset unavailable offline",
			"path", p,
			"error", err,
		)
		return Asset{}, "", dErrors.Wrap(err, dErrors.CodeUnavailable, "unavailable offline: "+p)
	}

	a = v.(Asset)
	if shared {
		a.Body = slices.Clone(a.Body)
	}
	c.metrics.IncrementRequest(string(SourceNetwork))
	return a, SourceNetwork, nil
}

func cloneManifest(m Manifest) Manifest {
	m.Assets = slices.Clone(m.Assets)
	return m
}
