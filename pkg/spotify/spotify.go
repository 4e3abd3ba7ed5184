package spotify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/igolaizola/moodtunes/pkg/service"
	"github.com/zmb3/spotify/v2"
)

// SearchTrack returns the best match for the query, or nil if there is none.
func (c *Client) SearchTrack(ctx context.Context, query string) (*spotify.FullTrack, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", "1")

	var resp spotify.SearchResult
	if _, err := c.do(ctx, "search?"+q.Encode(), &resp); err != nil {
		return nil, service.Wrap(service.CatalogLookup, fmt.Errorf("spotify: couldn't search track: %w", err))
	}
	if resp.Tracks == nil || len(resp.Tracks.Tracks) == 0 {
		return nil, nil
	}
	return &resp.Tracks.Tracks[0], nil
}

// Link returns the canonical Spotify link of the track, if any.
func Link(track *spotify.FullTrack) string {
	if track == nil {
		return ""
	}
	return track.ExternalURLs["spotify"]
}
