package entities

import "errors"

var (
	// ErrUnknownEntityType indicates the entity type cannot be resolved.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrUnknownBundle indicates the bundle is not defined on the entity type.
	ErrUnknownBundle = errors.New("unknown bundle")
)
