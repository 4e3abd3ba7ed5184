// Package spotify looks up recommended songs in the Spotify catalog.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const DefaultAPIURL = "https://api.spotify.com/v1"

type Client struct {
	client      *http.Client
	debug       bool
	timeout     time.Duration
	apiURL      string
	tokens      *TokenHolder
	concurrency int
}

type Config struct {
	Debug        bool
	Client       *http.Client
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
	// Concurrency bounds the number of parallel searches when enriching.
	Concurrency int
}

func New(cfg *Config) *Client {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Client{
		client:      client,
		debug:       cfg.Debug,
		timeout:     timeout,
		apiURL:      strings.TrimRight(apiURL, "/"),
		tokens:      NewTokenHolder(cfg.ClientID, cfg.ClientSecret, cfg.TokenURL, client, timeout),
		concurrency: concurrency,
	}
}

// Start acquires the first token so the first visitor doesn't pay for the
// handshake.
func (c *Client) Start(ctx context.Context) error {
	_, err := c.tokens.Token(ctx)
	return err
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return fmt.Sprintf("%d", e)
}

// do sends an authenticated GET request. A 401 response drops the cached
// token and the request is retried once with a fresh one.
func (c *Client) do(ctx context.Context, path string, out any) ([]byte, error) {
	b, err := c.doAttempt(ctx, path, out)
	var errStatus errStatusCode
	if errors.As(err, &errStatus) && int(errStatus) == http.StatusUnauthorized {
		zerolog.Ctx(ctx).Warn().Str("path", path).Msg("spotify: token rejected, authenticating again")
		return c.doAttempt(ctx, path, out)
	}
	return b, err
}

func (c *Client) doAttempt(ctx context.Context, path string, out any) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/%s", c.apiURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("spotify: couldn't create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify: couldn't get %s: %w", path, unwrapURL(err))
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("spotify: couldn't read response body: %w", err)
	}
	if c.debug {
		zerolog.Ctx(ctx).Debug().Str("path", path).Int("status", resp.StatusCode).Int("bytes", len(respBody)).Msg("spotify: response")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate(token)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMessage := string(respBody)
		if len(errMessage) > 100 {
			errMessage = errMessage[:100] + "..."
		}
		return nil, fmt.Errorf("spotify: %s returned (%s): %w", path, errMessage, errStatusCode(resp.StatusCode))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("spotify: couldn't unmarshal response body (%T): %w", out, err)
		}
	}
	return respBody, nil
}

func unwrapURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
