package weather

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUnavailable means an upstream call failed: transport error, non-success status,
	// open circuit or malformed payload.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrTimeout marks an upstream failure caused by the per-call deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrCityNotFound means the requested city is not present in the resolved data.
	ErrCityNotFound = errors.New("city not found")

	// ErrLocationNotFound means geocoding produced no first-level administrative area.
	ErrLocationNotFound = errors.New("location not found")

	// ErrElementMissing means a payload lacks a required element.
	ErrElementMissing = errors.New("weather element missing")

	// ErrCorruptSnapshot means the stored snapshot exists but cannot be used.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrNoSnapshot means the upstream failed and no snapshot was ever stored.
	ErrNoSnapshot = errors.New("no snapshot available")
)

// UpstreamError classifies err from the named upstream as ErrUnavailable,
// additionally marking deadline overruns with ErrTimeout.
func UpstreamError(upstream string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %w: %v", upstream, ErrUnavailable, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", upstream, ErrUnavailable, err)
}
