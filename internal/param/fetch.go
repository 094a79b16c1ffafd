package param

import (
	"context"
	"strings"
)

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
	FetchAll(context.Context, string) ([]string, error)
}

// Resolve returns the parameter stored at path when path is set and
// fallback otherwise.
func Resolve(ctx context.Context, f Fetcher, path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, nil
	}
	return f.Fetch(ctx, path)
}

// ResolveAll is Resolve for a parameter hierarchy.
func ResolveAll(ctx context.Context, f Fetcher, path string, fallback []string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, nil
	}
	values, err := f.FetchAll(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return fallback, nil
	}
	return values, nil
}

// Lazy defers building the underlying fetcher until a parameter is requested.
type Lazy func() Fetcher

func (l Lazy) Fetch(ctx context.Context, path string) (string, error) {
	return l().Fetch(ctx, path)
}

func (l Lazy) FetchAll(ctx context.Context, path string) ([]string, error) {
	return l().FetchAll(ctx, path)
}
