package spotify

import (
	"context"

	"github.com/igolaizola/moodtunes/pkg/songs"
	"golang.org/x/sync/errgroup"
)

// Enrich looks up every candidate by title and attaches its Spotify link.
// Songs without a match keep an empty URL. Lookups run with bounded
// concurrency, results keep the candidate order and the first failure
// cancels the remaining lookups.
func (c *Client) Enrich(ctx context.Context, candidates []songs.Candidate) ([]songs.Enriched, error) {
	enriched := make([]songs.Enriched, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			track, err := c.SearchTrack(ctx, cand.Title)
			if err != nil {
				return err
			}
			enriched[i] = songs.Enriched{
				Title:  cand.Title,
				Artist: cand.Artist,
				URL:    Link(track),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}
