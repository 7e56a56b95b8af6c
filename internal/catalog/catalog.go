// Package catalog loads query catalogs: a shared base catalog plus optional
// per-target overrides.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rankbeam/citewatch/pkg/types"
)

// catalogFile is the YAML shape of a catalog file.
type catalogFile struct {
	Queries []types.CatalogEntry `yaml:"queries"`
}

// Load reads and validates a catalog YAML file.
func Load(path string) ([]types.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if err := validate(cf.Queries); err != nil {
		return nil, fmt.Errorf("validating catalog %s: %w", path, err)
	}
	return cf.Queries, nil
}

func validate(entries []types.CatalogEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("catalog contains no queries")
	}
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.Query == "" {
			return fmt.Errorf("entry %d: query text is required", i)
		}
		if e.Category == "" {
			return fmt.Errorf("entry %d: category is required", i)
		}
		if seen[e.Query] {
			return fmt.Errorf("duplicate query %q", e.Query)
		}
		seen[e.Query] = true
	}
	return nil
}

// Resolver resolves the catalog for a target: the per-target override file
// under dir when present, otherwise the shared base catalog.
type Resolver struct {
	base []types.CatalogEntry
	dir  string
}

// NewResolver creates a Resolver from a base catalog and an optional
// override directory.
func NewResolver(base []types.CatalogEntry, dir string) *Resolver {
	return &Resolver{base: base, dir: dir}
}

// ForTarget returns the catalog for a target, in file order.
func (r *Resolver) ForTarget(targetID string) ([]types.CatalogEntry, error) {
	if r.dir != "" {
		path := filepath.Join(r.dir, targetID+".yaml")
		entries, err := Load(path)
		switch {
		case err == nil:
			return entries, nil
		case errors.Is(err, os.ErrNotExist):
			// fall through to the base catalog
		default:
			return nil, err
		}
	}

	if len(r.base) == 0 {
		return nil, fmt.Errorf("no catalog configured for target %q", targetID)
	}
	return r.base, nil
}
