package visitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type ipifyResponse struct {
	IP string `json:"ip"`
}

// IP returns the public IP address as reported by ipify.
func (r *Resolver) IP(ctx context.Context) (string, error) {
	body, err := r.get(ctx, r.ipifyURL+"?format=json")
	if err != nil {
		return "", err
	}
	var resp ipifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("visitor: couldn't unmarshal ip response: %w", err)
	}
	ip := strings.TrimSpace(resp.IP)
	if ip == "" {
		return "", fmt.Errorf("visitor: empty ip address")
	}
	return ip, nil
}
