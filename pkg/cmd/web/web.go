package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/igolaizola/moodtunes"
	"github.com/igolaizola/moodtunes/pkg/logging"
	"github.com/igolaizola/moodtunes/pkg/metrics"
	"github.com/igolaizola/moodtunes/pkg/openai"
	"github.com/igolaizola/moodtunes/pkg/service"
	"github.com/igolaizola/moodtunes/pkg/spotify"
	"github.com/igolaizola/moodtunes/pkg/visitor"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Config struct {
	Debug     bool
	LogFormat string

	Addr        string
	Public      string
	Timeout     time.Duration
	Concurrency int
	OpenAIModel string

	OpenAIKey           string
	IPStackKey          string
	OpenWeatherKey      string
	SpotifyClientID     string
	SpotifyClientSecret string

	IPifyURL        string
	IPStackURL      string
	WorldTimeURL    string
	OpenWeatherURL  string
	OpenAIURL       string
	SpotifyAPIURL   string
	SpotifyTokenURL string
}

// Validate checks that every secret is set. Only flag names are reported,
// never values.
func (c *Config) Validate() error {
	secrets := []struct {
		flag  string
		value string
	}{
		{"openai-key", c.OpenAIKey},
		{"ipstack-key", c.IPStackKey},
		{"openweather-key", c.OpenWeatherKey},
		{"spotify-client-id", c.SpotifyClientID},
		{"spotify-client-secret", c.SpotifyClientSecret},
	}
	var missing []string
	for _, s := range secrets {
		if strings.TrimSpace(s.value) == "" {
			missing = append(missing, s.flag)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("web: missing required secrets: %s", strings.Join(missing, ", "))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("web: invalid timeout: %s", c.Timeout)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("web: invalid concurrency: %d", c.Concurrency)
	}
	return nil
}

// Serve starts the recommendation server and blocks until ctx is done.
func Serve(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.Debug, cfg.LogFormat)
	ctx = logger.WithContext(ctx)

	logger.Info().Msg("web: server started")
	defer logger.Info().Msg("web: server ended")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpClient := &http.Client{}
	resolver := visitor.New(&visitor.Config{
		Debug:          cfg.Debug,
		Client:         httpClient,
		Timeout:        cfg.Timeout,
		IPifyURL:       cfg.IPifyURL,
		IPStackURL:     cfg.IPStackURL,
		IPStackKey:     cfg.IPStackKey,
		WorldTimeURL:   cfg.WorldTimeURL,
		OpenWeatherURL: cfg.OpenWeatherURL,
		OpenWeatherKey: cfg.OpenWeatherKey,
	})
	recommender := openai.New(&openai.Config{
		Token:   cfg.OpenAIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIURL,
		Timeout: cfg.Timeout,
		Client:  httpClient,
		Debug:   cfg.Debug,
	})
	catalog := spotify.New(&spotify.Config{
		Debug:        cfg.Debug,
		Client:       httpClient,
		Timeout:      cfg.Timeout,
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		APIURL:       cfg.SpotifyAPIURL,
		TokenURL:     cfg.SpotifyTokenURL,
		Concurrency:  cfg.Concurrency,
	})
	if err := catalog.Start(ctx); err != nil {
		// The token is requested again on the first lookup
		logger.Warn().Err(err).Msg("web: couldn't acquire spotify token")
	}
	pipeline := moodtunes.New(resolver, recommender, catalog, metrics.New(reg))

	mux := newRouter(logger, pipeline, cfg.Public, reg)

	// Create server
	split := strings.Split(cfg.Addr, ":")
	if len(split) != 2 {
		return fmt.Errorf("web: invalid address: %s", cfg.Addr)
	}
	host := split[0]
	port, err := strconv.Atoi(split[1])
	if err != nil {
		return fmt.Errorf("web: invalid port: %s", split[1])
	}
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		note := fmt.Sprintf("http://%s:%d", host, port)
		if host == "" {
			note = fmt.Sprintf("all interfaces http://localhost:%d", port)
		}
		logger.Info().Str("addr", note).Msg("web: listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("web: couldn't start server")
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: couldn't shutdown server: %w", err)
	}
	return nil
}

// Runner produces a recommendation and hands it to a sink.
type Runner interface {
	Run(ctx context.Context, sink moodtunes.Sink) error
}

func newRouter(logger zerolog.Logger, runner Runner, public string, gatherer prometheus.Gatherer) http.Handler {
	mux := chi.NewRouter()

	// Add middleware
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Timeout(60 * time.Second))

	mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		err := runner.Run(r.Context(), moodtunes.SinkFunc(func(ctx context.Context, view *moodtunes.View) error {
			return Page(view).Render(ctx, &buf)
		}))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("web: couldn't write page")
		}
	})
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Handler to serve the static files
	if public != "" {
		mux.Get("/*", http.StripPrefix("/", http.FileServer(http.FS(os.DirFS(public)))).ServeHTTP)
	}
	return mux
}

// writeError answers with the label of the failing service, or a generic
// message when the failure isn't attributed.
func writeError(w http.ResponseWriter, err error) {
	msg := http.StatusText(http.StatusInternalServerError)
	if name, ok := service.From(err); ok {
		msg = fmt.Sprintf("Error with %s", name)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, msg)
}

// requestLogger attaches a logger carrying a request id to the request
// context and logs every response.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ulid.Make().String()
			l := logger.With().Str("request_id", id).Logger()
			w.Header().Set("X-Request-Id", id)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				l.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Msg("web: request")
			}()
			next.ServeHTTP(ww, r.WithContext(l.WithContext(r.Context())))
		})
	}
}
