// Package visited persists the set of visited station names between runs.
package visited

import (
	"context"
	"fmt"
)

// Repository loads and saves the visited station names. Order carries no
// meaning.
type Repository interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, names []string) error
	Close() error
}

// Open returns the repository for backend ("json" or "sqlite") at path
func Open(ctx context.Context, backend, path string) (Repository, error) {
	switch backend {
	case "", "json":
		return NewJSONFile(path), nil
	case "sqlite":
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unknown visited backend %q", backend)
	}
}
