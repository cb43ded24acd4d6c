package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

// maxParallelLoads caps concurrent file reads in LoadAll.
const maxParallelLoads = 8

// LoadResult is the outcome of loading one file in LoadAll.
type LoadResult struct {
	Path    string
	Content sheet.Content
	Err     error
}

// LoadAll retrieves every path concurrently. Results are in input order.
// Per-file failures are reported in LoadResult.Err; the returned error is
// only set when the context is done before all loads finished.
func LoadAll(ctx context.Context, eng Engine, paths []string) ([]LoadResult, error) {
	results := make([]LoadResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = LoadResult{Path: path, Err: err}
				return nil
			}
			c, err := eng.RetrieveFileContents(gctx, path)
			results[i] = LoadResult{Path: path, Content: c, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
