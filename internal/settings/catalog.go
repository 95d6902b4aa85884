package settings

import (
	"context"

	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/users"
)

// Catalog lists everything an admin can pick from when building an ExportConfig.
type Catalog struct {
	UserFields  []entities.FieldDefinition `json:"userFields"`
	EntityTypes []CatalogEntityType        `json:"entityTypes"`
}

type CatalogEntityType struct {
	entities.EntityType
	Bundles []CatalogBundle `json:"bundles"`
}

type CatalogBundle struct {
	entities.Bundle
	Fields []entities.FieldDefinition `json:"fields"`
}

// BuildCatalog walks src. The user entity type is left out since it is covered
// by UserFields.
func BuildCatalog(ctx context.Context, src entities.Source) (Catalog, error) {
	catalog := Catalog{UserFields: users.FieldDefinitions()}

	types, err := src.EntityTypes(ctx)
	if err != nil {
		return Catalog{}, err
	}
	for _, t := range types {
		if t.ID == entities.UserEntityType {
			continue
		}
		bundles, err := src.Bundles(ctx, t.ID)
		if err != nil {
			return Catalog{}, err
		}
		entry := CatalogEntityType{EntityType: t, Bundles: []CatalogBundle{}}
		for _, b := range bundles {
			fields, err := src.Fields(ctx, t.ID, b.ID)
			if err != nil {
				return Catalog{}, err
			}
			entry.Bundles = append(entry.Bundles, CatalogBundle{Bundle: b, Fields: fields})
		}
		catalog.EntityTypes = append(catalog.EntityTypes, entry)
	}
	if catalog.EntityTypes == nil {
		catalog.EntityTypes = []CatalogEntityType{}
	}
	return catalog, nil
}
