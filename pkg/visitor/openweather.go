package visitor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// Weather is the current weather of a city.
type Weather struct {
	Description string
	// FeelsLike is the perceived temperature in Celsius.
	FeelsLike float64
}

type openweatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
}

// Weather returns the current weather for the city in metric units.
func (r *Resolver) Weather(ctx context.Context, city string) (Weather, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", r.openweatherKey)
	q.Set("units", "metric")
	body, err := r.get(ctx, fmt.Sprintf("%s/data/2.5/weather?%s", r.openweatherURL, q.Encode()))
	if err != nil {
		return Weather{}, err
	}
	var resp openweatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Weather{}, fmt.Errorf("visitor: couldn't unmarshal weather response: %w", err)
	}
	if len(resp.Weather) == 0 {
		return Weather{}, fmt.Errorf("visitor: no weather conditions for %s", city)
	}
	desc := strings.TrimSpace(resp.Weather[0].Description)
	if desc == "" {
		return Weather{}, fmt.Errorf("visitor: empty weather description for %s", city)
	}
	return Weather{
		Description: desc,
		FeelsLike:   resp.Main.FeelsLike,
	}, nil
}
