package settings

import "gdpr-backend/internal/entities"

func testSource() *entities.MemorySource {
	src := entities.NewMemorySource()
	src.AddEntityType(entities.EntityType{ID: entities.UserEntityType, Label: "User"})
	src.AddEntityType(entities.EntityType{ID: "commerce_order", Label: "Order"})
	src.AddBundle(entities.Bundle{EntityTypeID: "commerce_order", ID: "default", Label: "Default"},
		entities.FieldDefinition{Key: "customer_id", Label: "Customer"},
		entities.FieldDefinition{Key: "total", Label: "Total"},
	)
	return src
}

func sampleConfig() ExportConfig {
	return ExportConfig{
		IncludeUser: true,
		UserFields:  []FieldToggle{{Key: "email", Enabled: true}, {Key: "name", Enabled: false}},
		LinkedEntities: []LinkedEntityConfig{{
			EntityTypeID: "commerce_order",
			Enabled:      true,
			Bundles: []BundleConfig{{
				BundleID:     "default",
				Enabled:      true,
				MappingField: "customer_id",
				Fields:       []FieldToggle{{Key: "total", Enabled: true}},
			}},
		}},
	}
}
