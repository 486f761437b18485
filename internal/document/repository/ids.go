package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator returns a new collision-resistant document identifier.
type IDGenerator func() string

// NewUUID returns a random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// NewULID returns a time-sortable ULID string.
func NewULID() string {
	return ulid.Make().String()
}

// IDGeneratorFor maps a configured scheme name to its generator. An empty
// scheme selects UUIDs.
func IDGeneratorFor(scheme string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", "uuid":
		return NewUUID, nil
	case "ulid":
		return NewULID, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIDScheme, scheme)
}
