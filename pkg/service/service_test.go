package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsFirstTag(t *testing.T) {
	base := errors.New("boom")
	inner := Wrap(CityResolution, base)
	outer := Wrap(Recommendation, fmt.Errorf("pipeline: %w", inner))

	got, ok := From(outer)
	if !ok {
		t.Fatal("expected tagged error")
	}
	if got != CityResolution {
		t.Errorf("From() = %v, want %v", got, CityResolution)
	}
	if !errors.Is(outer, base) {
		t.Error("expected wrapped error to match base")
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(IPResolution, nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapTimeout(t *testing.T) {
	err := Wrap(WeatherResolution, context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatal("expected *Error")
	}
	if svcErr.Message() != context.DeadlineExceeded.Error() {
		t.Errorf("Message() = %q", svcErr.Message())
	}
}

func TestNamesAreLabelled(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range Names {
		label := n.String()
		if seen[label] {
			t.Errorf("duplicated label %q", label)
		}
		seen[label] = true
		if n.Key() == "unknown" {
			t.Errorf("missing key for %v", n)
		}
	}
	if Name(0).Key() != "unknown" {
		t.Error("zero value should be unknown")
	}
}
