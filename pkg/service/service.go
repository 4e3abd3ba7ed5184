// Package service tags failures with the external dependency that caused them.
package service

import (
	"errors"
	"fmt"
)

// Name identifies an external dependency of the pipeline.
type Name int

const (
	IPResolution Name = iota + 1
	CityResolution
	TimeResolution
	WeatherResolution
	Recommendation
	CatalogAuth
	CatalogLookup
)

// Names lists every known service in pipeline order.
var Names = []Name{
	IPResolution,
	CityResolution,
	TimeResolution,
	WeatherResolution,
	Recommendation,
	CatalogAuth,
	CatalogLookup,
}

// String returns the label shown to visitors.
func (n Name) String() string {
	switch n {
	case IPResolution:
		return "IP Address Retrieval"
	case CityResolution:
		return "City Retrieval"
	case TimeResolution:
		return "Local Time Retrieval"
	case WeatherResolution:
		return "Weather Data Retrieval"
	case Recommendation:
		return "Song Recommendation"
	case CatalogAuth:
		return "Spotify Authentication"
	case CatalogLookup:
		return "Spotify Search"
	default:
		return fmt.Sprintf("unknown service (%d)", int(n))
	}
}

// Key returns a stable lowercase identifier, used as a metric label.
func (n Name) Key() string {
	switch n {
	case IPResolution:
		return "ip"
	case CityResolution:
		return "city"
	case TimeResolution:
		return "time"
	case WeatherResolution:
		return "weather"
	case Recommendation:
		return "recommendation"
	case CatalogAuth:
		return "catalog_auth"
	case CatalogLookup:
		return "catalog_lookup"
	default:
		return "unknown"
	}
}

// Error is a failure attributed to a single external service.
type Error struct {
	Service Name
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the underlying failure message without the service label.
func (e *Error) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Wrap tags err with the given service. An error that already carries a tag
// keeps it, so outer layers can't overwrite the original attribution.
func Wrap(name Name, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return &Error{Service: name, Err: err}
}

// Errorf builds a tagged error from a format string.
func Errorf(name Name, format string, args ...any) error {
	return &Error{Service: name, Err: fmt.Errorf(format, args...)}
}

// From returns the service tag carried by err, if any.
func From(err error) (Name, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Service, true
	}
	return 0, false
}
