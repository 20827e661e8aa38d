package imgur

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// GetAll fetches endpoints concurrently and returns the parsed responses in
// the same order. Each failed exchange is classified on its own; the first
// error cancels the remaining requests and is returned.
func (c *Client) GetAll(ctx context.Context, endpoints []string) ([]*Response, error) {
	results := make([]*Response, len(endpoints))
	if len(endpoints) == 0 {
		return results, nil
	}

	api := NewAPI(c)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, endpoint := range endpoints {
		i, endpoint := i, endpoint
		g.Go(func() error {
			resp, err := api.Get(ctx, endpoint, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", endpoint, err)
			}
			// Each goroutine owns a distinct index
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("count", len(results)).Msg("Fetched endpoints from Imgur")
	return results, nil
}
