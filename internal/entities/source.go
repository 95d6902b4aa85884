package entities

import "context"

// Source gives read access to entity metadata and records.
type Source interface {
	EntityTypes(ctx context.Context) ([]EntityType, error)
	Bundles(ctx context.Context, entityTypeID string) ([]Bundle, error)
	// Fields returns the bundle's field definitions in their natural order.
	Fields(ctx context.Context, entityTypeID, bundleID string) ([]FieldDefinition, error)
	Find(ctx context.Context, q Query) ([]Record, error)
}
