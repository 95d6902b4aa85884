package exports

import (
	"context"
	"testing"

	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/settings"
)

func TestResolveEmptyConfig(t *testing.T) {
	r := NewResolver(orderSource())
	cfg := settings.ExportConfig{
		LinkedEntities: []settings.LinkedEntityConfig{{EntityTypeID: "order", Enabled: false, Bundles: []settings.BundleConfig{
			{BundleID: "order", Enabled: true, MappingField: "customer_id"},
		}}},
	}
	if units := r.Resolve(context.Background(), cfg); len(units) != 0 {
		t.Fatalf("expected no units, got %+v", units)
	}
}

func TestResolveSkipsInvalidMappingField(t *testing.T) {
	r := NewResolver(orderSource())
	for _, mapping := range []string{"", "owner"} {
		cfg := settings.ExportConfig{
			LinkedEntities: []settings.LinkedEntityConfig{{EntityTypeID: "order", Enabled: true, Bundles: []settings.BundleConfig{
				{BundleID: "order", Enabled: true, MappingField: mapping, Fields: []settings.FieldToggle{{Key: "total", Enabled: true}}},
			}}},
		}
		if units := r.Resolve(context.Background(), cfg); len(units) != 0 {
			t.Fatalf("mapping %q: expected unit to be skipped, got %+v", mapping, units)
		}
	}
}

func TestResolveUserUnitColumns(t *testing.T) {
	r := NewResolver(orderSource())
	cfg := settings.ExportConfig{
		IncludeUser: true,
		UserFields: []settings.FieldToggle{
			{Key: "name", Enabled: true},
			{Key: "email", Enabled: false},
			{Key: "nickname", Enabled: true},
		},
	}
	units := r.Resolve(context.Background(), cfg)
	if len(units) != 1 || units[0].Kind != UnitUser {
		t.Fatalf("expected one user unit, got %+v", units)
	}
	if len(units[0].Fields) != 1 || units[0].Fields[0] != (Column{Key: "name", Label: "Name"}) {
		t.Fatalf("unexpected columns: %+v", units[0].Fields)
	}
}

func TestResolveOrderAndBundleFilter(t *testing.T) {
	src := orderSource()
	src.AddEntityType(entities.EntityType{ID: "node", Label: "Content"})
	src.AddBundle(entities.Bundle{EntityTypeID: "node", ID: "article"},
		entities.FieldDefinition{Key: "uid", Label: "Author"},
		entities.FieldDefinition{Key: "type", Label: "Type"},
		entities.FieldDefinition{Key: "title", Label: "Title"},
	)

	cfg := scenarioConfig()
	cfg.LinkedEntities = append(cfg.LinkedEntities,
		settings.LinkedEntityConfig{EntityTypeID: "ghost", Enabled: true, Bundles: []settings.BundleConfig{
			{BundleID: "x", Enabled: true, MappingField: "uid"},
		}},
		settings.LinkedEntityConfig{EntityTypeID: "node", Enabled: true, Bundles: []settings.BundleConfig{
			{BundleID: "article", Enabled: true, MappingField: "uid", Fields: []settings.FieldToggle{
				{Key: "title", Enabled: true},
				{Key: "uid", Enabled: true},
			}},
			{BundleID: "page", Enabled: false, MappingField: "uid"},
		}},
	)

	units := NewResolver(src).Resolve(context.Background(), cfg)
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d: %+v", len(units), units)
	}
	if units[0].Kind != UnitUser || units[1].EntityTypeID != "order" || units[2].EntityTypeID != "node" {
		t.Fatalf("unexpected unit order: %+v", units)
	}
	if units[1].FilterBundle {
		t.Fatalf("order bundle has no type field and must not filter by bundle")
	}
	article := units[2]
	if !article.FilterBundle {
		t.Fatalf("article bundle defines type and must filter by bundle")
	}
	labels := article.Labels()
	if len(labels) != 2 || labels[0] != "Title" || labels[1] != "Author" {
		t.Fatalf("expected configured column order, got %v", labels)
	}
}
