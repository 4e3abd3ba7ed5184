package spotify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/igolaizola/moodtunes/pkg/service"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// TokenHolder caches the bearer token obtained with the client credentials
// flow. The token is acquired lazily, shared by every request of the
// process and renewed when it expires or is invalidated. Concurrent
// acquisitions are collapsed into a single handshake.
type TokenHolder struct {
	cfg     clientcredentials.Config
	client  *http.Client
	timeout time.Duration
	group   singleflight.Group

	mu    sync.Mutex
	token *oauth2.Token
}

func NewTokenHolder(clientID, clientSecret, tokenURL string, client *http.Client, timeout time.Duration) *TokenHolder {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &TokenHolder{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client:  client,
		timeout: timeout,
	}
}

func (h *TokenHolder) current() *oauth2.Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

// Token returns a valid access token, performing the handshake if needed.
// Failures are tagged as catalog authentication errors.
func (h *TokenHolder) Token(ctx context.Context) (string, error) {
	if tok := h.current(); tok.Valid() {
		return tok.AccessToken, nil
	}
	v, err, _ := h.group.Do("token", func() (any, error) {
		if tok := h.current(); tok.Valid() {
			return tok, nil
		}
		// The handshake result is shared, so it must outlive the caller
		// that happened to start it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()
		ctx = context.WithValue(ctx, oauth2.HTTPClient, h.client)

		tok, err := h.cfg.Token(ctx)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		h.token = tok
		h.mu.Unlock()
		zerolog.Ctx(ctx).Debug().Time("expiry", tok.Expiry).Msg("spotify: acquired token")
		return tok, nil
	})
	if err != nil {
		return "", service.Wrap(service.CatalogAuth, fmt.Errorf("spotify: couldn't authenticate: %w", err))
	}
	return v.(*oauth2.Token).AccessToken, nil
}

// Invalidate drops the held token if it is still the given access token,
// so the next call to Token performs a new handshake.
func (h *TokenHolder) Invalidate(accessToken string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.token != nil && h.token.AccessToken == accessToken {
		h.token = nil
	}
}
