// Package assets keeps a versioned copy of the browser front-end so the
// decision aid keeps working offline. A manifest names the version and the
// asset list; Install populates that version from an origin, Activate drops
// every other version, and Serve answers from the cache before the origin.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	dErrors "contractguide/pkg/domain-errors"
	platformstrings "contractguide/pkg/platform/strings"
)

// Manifest is the install list of one cache version. Bump Version whenever
// any listed file changes.
type Manifest struct {
	Version string   `yaml:"version"`
	Assets  []string `yaml:"assets"`
}

// DefaultManifest lists the front-end shipped with the service.
func DefaultManifest() Manifest {
	return Manifest{
		Version: "contract-guide-v2",
		Assets: []string{
			"/",
			"/index.html",
			"/style.css",
			"/script.js",
			"/manifest.json",
			"/icon-192x192.png",
			"/icon-512x512.png",
		},
	}
}

// LoadManifest reads a manifest file. An empty path returns DefaultManifest.
func LoadManifest(p string) (Manifest, error) {
	if p == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read asset manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates a YAML manifest. Asset paths are
// normalized ("./style.css" becomes "/style.css") and duplicates dropped.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse asset manifest: %w", err)
	}
	m.Version = strings.TrimSpace(m.Version)

	m.Assets = platformstrings.DedupeFunc(m.Assets, func(p string) string {
		if strings.TrimSpace(p) == "" {
			return ""
		}
		return NormalizePath(p)
	})

	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks that the manifest names a version and at least one asset.
func (m Manifest) Validate() error {
	var errs []error
	if m.Version == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if len(m.Assets) == 0 {
		errs = append(errs, errors.New("assets must list at least one path"))
	}
	if err := errors.Join(errs...); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid asset manifest")
	}
	return nil
}

// NormalizePath maps request and manifest paths onto one key space: rooted,
// cleaned, with "." prefixes removed. The site root is "/".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimPrefix(p, ".")
	return path.Clean("/" + p)
}
