// Package visitor derives the ambient context of a visitor: public IP, city,
// local time and weather.
package visitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/igolaizola/moodtunes/pkg/service"
	"github.com/rs/zerolog"
)

// Context is the ambient information used to theme the recommendations.
type Context struct {
	IP          string
	City        string
	Datetime    string
	Description string
	FeelsLike   float64
}

// Time returns the local time in 12-hour format.
func (c Context) Time() string {
	return FormatTime(c.Datetime)
}

type Config struct {
	Debug   bool
	Client  *http.Client
	Timeout time.Duration

	IPifyURL       string
	IPStackURL     string
	IPStackKey     string
	WorldTimeURL   string
	OpenWeatherURL string
	OpenWeatherKey string
}

const (
	DefaultIPifyURL       = "https://api.ipify.org"
	DefaultIPStackURL     = "http://api.ipstack.com"
	DefaultWorldTimeURL   = "http://worldtimeapi.org"
	DefaultOpenWeatherURL = "http://api.openweathermap.org"
)

// Resolver chains the lookups needed to build a Context.
type Resolver struct {
	client         *http.Client
	debug          bool
	timeout        time.Duration
	ipifyURL       string
	ipstackURL     string
	ipstackKey     string
	worldtimeURL   string
	openweatherURL string
	openweatherKey string
}

func New(cfg *Config) *Resolver {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		client:         client,
		debug:          cfg.Debug,
		timeout:        timeout,
		ipifyURL:       baseURL(cfg.IPifyURL, DefaultIPifyURL),
		ipstackURL:     baseURL(cfg.IPStackURL, DefaultIPStackURL),
		ipstackKey:     cfg.IPStackKey,
		worldtimeURL:   baseURL(cfg.WorldTimeURL, DefaultWorldTimeURL),
		openweatherURL: baseURL(cfg.OpenWeatherURL, DefaultOpenWeatherURL),
		openweatherKey: cfg.OpenWeatherKey,
	}
}

func baseURL(u, def string) string {
	if u == "" {
		u = def
	}
	return strings.TrimRight(u, "/")
}

// Resolve runs the lookups in order. Each one needs the result of the
// previous, so nothing runs in parallel. The returned error is tagged with
// the lookup that failed.
func (r *Resolver) Resolve(ctx context.Context) (Context, error) {
	ip, err := r.IP(ctx)
	if err != nil {
		return Context{}, service.Wrap(service.IPResolution, err)
	}
	city, err := r.City(ctx, ip)
	if err != nil {
		return Context{}, service.Wrap(service.CityResolution, err)
	}
	datetime, err := r.LocalTime(ctx, ip)
	if err != nil {
		return Context{}, service.Wrap(service.TimeResolution, err)
	}
	weather, err := r.Weather(ctx, city)
	if err != nil {
		return Context{}, service.Wrap(service.WeatherResolution, err)
	}
	return Context{
		IP:          ip,
		City:        city,
		Datetime:    datetime,
		Description: weather.Description,
		FeelsLike:   weather.FeelsLike,
	}, nil
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return fmt.Sprintf("%d", e)
}

// get performs a GET request bounded by the resolver timeout and returns
// the response body.
func (r *Resolver) get(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("visitor: couldn't create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		// url.Error embeds the full URL, access keys included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("visitor: couldn't get %s: %w", redact(req), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("visitor: couldn't read response body: %w", err)
	}
	if r.debug {
		zerolog.Ctx(ctx).Debug().Str("url", redact(req)).Int("status", resp.StatusCode).Bytes("body", truncate(body)).Msg("visitor: response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("visitor: %s returned (%s): %w", redact(req), truncate(body), errStatusCode(resp.StatusCode))
	}
	return body, nil
}

// redact strips query parameters so access keys never reach logs or errors.
func redact(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

func truncate(b []byte) []byte {
	if len(b) > 100 {
		return append(b[:100:100], "..."...)
	}
	return b
}
