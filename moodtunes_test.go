package moodtunes

import (
	"context"
	"errors"
	"testing"

	"github.com/igolaizola/moodtunes/pkg/metrics"
	"github.com/igolaizola/moodtunes/pkg/service"
	"github.com/igolaizola/moodtunes/pkg/songs"
	"github.com/igolaizola/moodtunes/pkg/visitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	vc  visitor.Context
	err error
}

func (f *fakeResolver) Resolve(context.Context) (visitor.Context, error) {
	return f.vc, f.err
}

type fakeRecommender struct {
	raw    string
	err    error
	called bool
	got    visitor.Context
}

func (f *fakeRecommender) RequestSongs(_ context.Context, vc visitor.Context) (string, error) {
	f.called = true
	f.got = vc
	return f.raw, f.err
}

type fakeEnricher struct {
	links  map[string]string
	err    error
	called bool
}

func (f *fakeEnricher) Enrich(_ context.Context, candidates []songs.Candidate) ([]songs.Enriched, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	out := make([]songs.Enriched, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, songs.Enriched{Title: c.Title, Artist: c.Artist, URL: f.links[c.Title]})
	}
	return out, nil
}

var paris = visitor.Context{
	IP:          "203.0.113.7",
	City:        "Paris",
	Datetime:    "2024-03-01T14:05:10+01:00",
	Description: "clear sky",
	FeelsLike:   18.4,
}

const parisSongs = `{"songs": [{"title": "Under Paris Skies", "artist": "Edith Piaf"}, {"title": "Here Comes the Sun", "artist": "The Beatles"}]}`

func TestRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	rec := &fakeRecommender{raw: parisSongs}
	enr := &fakeEnricher{links: map[string]string{
		"Under Paris Skies":  "https://open.spotify.com/track/1",
		"Here Comes the Sun": "https://open.spotify.com/track/2",
	}}
	p := New(&fakeResolver{vc: paris}, rec, enr, m)

	var rendered *View
	err := p.Run(context.Background(), SinkFunc(func(_ context.Context, v *View) error {
		rendered = v
		return nil
	}))
	require.NoError(t, err)
	require.Equal(t, paris, rec.got)
	require.Equal(t, &View{
		City:      "Paris",
		Time:      "2:05 PM",
		Weather:   "Clear sky",
		FeelsLike: 18.4,
		Songs: []songs.Enriched{
			{Title: "Under Paris Skies", Artist: "Edith Piaf", URL: "https://open.spotify.com/track/1"},
			{Title: "Here Comes the Sun", Artist: "The Beatles", URL: "https://open.spotify.com/track/2"},
		},
	}, rendered)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("ok")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.MissingLinks))
	require.Equal(t, 4, testutil.CollectAndCount(m.StageDuration))
}

func TestRunFailures(t *testing.T) {
	upstream := errors.New("connection refused")
	tests := []struct {
		name         string
		resolver     *fakeResolver
		recommender  *fakeRecommender
		enricher     *fakeEnricher
		want         service.Name
		wantDecode   bool
		wantRecCall  bool
		wantEnrCall  bool
		wantFailures string
	}{
		{
			name:         "weather",
			resolver:     &fakeResolver{err: service.Wrap(service.WeatherResolution, upstream)},
			recommender:  &fakeRecommender{raw: parisSongs},
			enricher:     &fakeEnricher{},
			want:         service.WeatherResolution,
			wantFailures: "weather",
		},
		{
			name:         "partial context",
			resolver:     &fakeResolver{vc: visitor.Context{IP: "203.0.113.7", City: "Paris", Datetime: paris.Datetime}},
			recommender:  &fakeRecommender{raw: parisSongs},
			enricher:     &fakeEnricher{},
			want:         service.WeatherResolution,
			wantFailures: "weather",
		},
		{
			name:         "recommendation",
			resolver:     &fakeResolver{vc: paris},
			recommender:  &fakeRecommender{err: upstream},
			enricher:     &fakeEnricher{},
			want:         service.Recommendation,
			wantRecCall:  true,
			wantFailures: "recommendation",
		},
		{
			name:         "decode",
			resolver:     &fakeResolver{vc: paris},
			recommender:  &fakeRecommender{raw: "Sorry, I can't do that."},
			enricher:     &fakeEnricher{},
			wantDecode:   true,
			wantRecCall:  true,
			wantFailures: "decode",
		},
		{
			name:         "catalog auth",
			resolver:     &fakeResolver{vc: paris},
			recommender:  &fakeRecommender{raw: parisSongs},
			enricher:     &fakeEnricher{err: service.Wrap(service.CatalogAuth, upstream)},
			want:         service.CatalogAuth,
			wantRecCall:  true,
			wantEnrCall:  true,
			wantFailures: "catalog_auth",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			p := New(tt.resolver, tt.recommender, tt.enricher, m)
			rendered := false
			err := p.Run(context.Background(), SinkFunc(func(context.Context, *View) error {
				rendered = true
				return nil
			}))
			require.Error(t, err)
			require.False(t, rendered)
			require.Equal(t, tt.wantRecCall, tt.recommender.called)
			require.Equal(t, tt.wantEnrCall, tt.enricher.called)
			require.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues(tt.wantFailures)))

			if tt.wantDecode {
				var parseErr *songs.ParseError
				require.ErrorAs(t, err, &parseErr)
				_, ok := service.From(err)
				require.False(t, ok)
				return
			}
			name, ok := service.From(err)
			require.True(t, ok)
			require.Equal(t, tt.want, name)
		})
	}
}

func TestRunSinkError(t *testing.T) {
	p := New(&fakeResolver{vc: paris}, &fakeRecommender{raw: parisSongs}, &fakeEnricher{}, nil)
	err := p.Run(context.Background(), SinkFunc(func(context.Context, *View) error {
		return errors.New("broken pipe")
	}))
	require.Error(t, err)
	_, ok := service.From(err)
	require.False(t, ok)
}

func TestMissingLinks(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	p := New(&fakeResolver{vc: paris}, &fakeRecommender{raw: parisSongs}, &fakeEnricher{}, m)
	view, err := p.Recommend(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Songs, 2)
	for _, s := range view.Songs {
		require.False(t, s.HasURL())
	}
	require.Equal(t, 2.0, testutil.ToFloat64(m.MissingLinks))
}

func TestCapitalize(t *testing.T) {
	for in, want := range map[string]string{
		"clear sky":  "Clear sky",
		"Overcast":   "Overcast",
		"":           "",
		"éclaircies": "Éclaircies",
		"light rain": "Light rain",
	} {
		require.Equal(t, want, capitalize(in))
	}
}
