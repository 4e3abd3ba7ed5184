package visitor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

type ipstackResponse struct {
	City    string `json:"city"`
	Success *bool  `json:"success,omitempty"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

// City returns the city the IP address is located in.
func (r *Resolver) City(ctx context.Context, ip string) (string, error) {
	u := fmt.Sprintf("%s/%s?access_key=%s", r.ipstackURL, url.PathEscape(ip), url.QueryEscape(r.ipstackKey))
	body, err := r.get(ctx, u)
	if err != nil {
		return "", err
	}
	var resp ipstackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("visitor: couldn't unmarshal city response: %w", err)
	}
	// ipstack reports errors with a 200 status
	if resp.Error != nil {
		return "", fmt.Errorf("visitor: ipstack error %d (%s): %s", resp.Error.Code, resp.Error.Type, resp.Error.Info)
	}
	city := strings.TrimSpace(resp.City)
	if city == "" {
		return "", fmt.Errorf("visitor: no city found for %s", ip)
	}
	return city, nil
}
