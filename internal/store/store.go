package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies one of the globally shared snapshot documents.
type Kind string

const (
	KindCurrent  Kind = "current"
	KindForecast Kind = "forecast"
)

var (
	// ErrNotFound is returned when a snapshot of the given kind was never saved.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorrupt is returned when a stored snapshot exists but is not valid JSON.
	ErrCorrupt = errors.New("snapshot corrupt")

	errUnknownKind = errors.New("unknown snapshot kind")
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindCurrent || k == KindForecast
}

func checkKind(k Kind) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %q", errUnknownKind, k)
	}
	return nil
}

func checkPayload(k Kind, data []byte) error {
	if len(data) == 0 || !json.Valid(data) {
		return fmt.Errorf("%w: %s", ErrCorrupt, k)
	}
	return nil
}
