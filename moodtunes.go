// Package moodtunes recommends songs that fit the place, time and weather of
// a visitor.
package moodtunes

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/igolaizola/moodtunes/pkg/metrics"
	"github.com/igolaizola/moodtunes/pkg/service"
	"github.com/igolaizola/moodtunes/pkg/songs"
	"github.com/igolaizola/moodtunes/pkg/visitor"
	"github.com/rs/zerolog"
)

// Resolver derives the visitor context.
type Resolver interface {
	Resolve(ctx context.Context) (visitor.Context, error)
}

// Recommender asks the language model for songs and returns its raw answer.
type Recommender interface {
	RequestSongs(ctx context.Context, vc visitor.Context) (string, error)
}

// Enricher looks up the catalog link of every candidate, keeping order.
type Enricher interface {
	Enrich(ctx context.Context, candidates []songs.Candidate) ([]songs.Enriched, error)
}

// Sink renders a successful recommendation.
type Sink interface {
	Render(ctx context.Context, view *View) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, view *View) error

func (f SinkFunc) Render(ctx context.Context, view *View) error {
	return f(ctx, view)
}

// View is the data shown to the visitor.
type View struct {
	City    string
	Time    string
	Weather string
	// FeelsLike is kept unrounded, in Celsius.
	FeelsLike float64
	Songs     []songs.Enriched
}

// Pipeline chains context resolution, recommendation, decoding and
// enrichment.
type Pipeline struct {
	resolver    Resolver
	recommender Recommender
	enricher    Enricher
	metrics     *metrics.Metrics
}

// New returns a pipeline. m may be nil.
func New(resolver Resolver, recommender Recommender, enricher Enricher, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		resolver:    resolver,
		recommender: recommender,
		enricher:    enricher,
		metrics:     m,
	}
}

// Run builds the view and hands it to the sink. Nothing is rendered if any
// stage fails.
func (p *Pipeline) Run(ctx context.Context, sink Sink) error {
	view, err := p.Recommend(ctx)
	if err != nil {
		return err
	}
	if err := sink.Render(ctx, view); err != nil {
		return fmt.Errorf("moodtunes: couldn't render view: %w", err)
	}
	return nil
}

// Recommend runs every stage in order and stops at the first failure. The
// returned error keeps the tag of the failing service.
func (p *Pipeline) Recommend(ctx context.Context) (*View, error) {
	log := zerolog.Ctx(ctx)

	view, err := p.recommend(ctx)
	if err != nil {
		key := "unknown"
		if name, ok := service.From(err); ok {
			key = name.Key()
		} else {
			var parseErr *songs.ParseError
			if errors.As(err, &parseErr) {
				key = "decode"
			}
		}
		p.metrics.Fail(key)
		log.Error().Err(err).Str("service", key).Msg("moodtunes: recommendation failed")
		return nil, err
	}

	var missing int
	for _, s := range view.Songs {
		if !s.HasURL() {
			missing++
		}
	}
	p.metrics.Succeed(len(view.Songs), missing)
	log.Debug().Str("city", view.City).Int("songs", len(view.Songs)).Int("missing", missing).Msg("moodtunes: recommendation ready")
	return view, nil
}

func (p *Pipeline) recommend(ctx context.Context) (*View, error) {
	log := zerolog.Ctx(ctx)

	start := time.Now()
	vc, err := p.resolver.Resolve(ctx)
	p.metrics.Observe("context", start)
	if err != nil {
		return nil, err
	}
	if err := complete(vc); err != nil {
		return nil, err
	}

	start = time.Now()
	raw, err := p.recommender.RequestSongs(ctx, vc)
	p.metrics.Observe("recommendation", start)
	if err != nil {
		return nil, service.Wrap(service.Recommendation, err)
	}

	start = time.Now()
	candidates, err := songs.Decode(raw)
	p.metrics.Observe("decode", start)
	if err != nil {
		return nil, err
	}
	if songs.Sparse(len(candidates)) {
		log.Warn().Int("songs", len(candidates)).Int("requested", songs.Requested).Msg("moodtunes: fewer songs than requested")
	}

	start = time.Now()
	enriched, err := p.enricher.Enrich(ctx, candidates)
	p.metrics.Observe("enrichment", start)
	if err != nil {
		return nil, service.Wrap(service.CatalogLookup, err)
	}

	return &View{
		City:      vc.City,
		Time:      vc.Time(),
		Weather:   capitalize(vc.Description),
		FeelsLike: vc.FeelsLike,
		Songs:     enriched,
	}, nil
}

// complete checks that no context field is empty so the model is never
// prompted with partial information.
func complete(vc visitor.Context) error {
	switch {
	case vc.IP == "":
		return service.Errorf(service.IPResolution, "moodtunes: empty ip address")
	case vc.City == "":
		return service.Errorf(service.CityResolution, "moodtunes: empty city")
	case vc.Datetime == "":
		return service.Errorf(service.TimeResolution, "moodtunes: empty local time")
	case vc.Description == "":
		return service.Errorf(service.WeatherResolution, "moodtunes: empty weather description")
	}
	return nil
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
