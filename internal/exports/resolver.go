package exports

import (
	"context"

	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/settings"
	"gdpr-backend/internal/shared/metrics"
	"gdpr-backend/internal/shared/telemetry"
	"gdpr-backend/internal/users"
)

// Resolver turns an ExportConfig into the ordered list of units to write.
type Resolver struct {
	Source entities.Source
}

func NewResolver(src entities.Source) *Resolver {
	return &Resolver{Source: src}
}

// Resolve never fails: bundles that cannot be resolved are skipped. The user
// unit comes first, followed by linked bundles in configured order.
func (r *Resolver) Resolve(ctx context.Context, cfg settings.ExportConfig) []Unit {
	var units []Unit

	if cfg.IncludeUser {
		defs := users.FieldDefinitions()
		unit := Unit{Kind: UnitUser, EntityTypeID: entities.UserEntityType}
		for _, key := range settings.EnabledKeys(cfg.UserFields) {
			if !entities.HasField(defs, key) {
				continue
			}
			unit.Fields = append(unit.Fields, Column{Key: key, Label: entities.Label(defs, key)})
		}
		units = append(units, unit)
	}

	for _, le := range cfg.LinkedEntities {
		if !le.Enabled || le.EntityTypeID == entities.UserEntityType {
			continue
		}
		for _, b := range le.Bundles {
			if !b.Enabled {
				continue
			}
			unit, reason := r.resolveBundle(ctx, le.EntityTypeID, b)
			if reason != "" {
				telemetry.Info("export.unit_skipped", map[string]any{
					"entity_type": le.EntityTypeID,
					"bundle":      b.BundleID,
					"reason":      reason,
				})
				metrics.IncExportUnit(string(UnitLinkedBundle), "skipped")
				continue
			}
			units = append(units, unit)
		}
	}
	return units
}

func (r *Resolver) resolveBundle(ctx context.Context, entityTypeID string, b settings.BundleConfig) (Unit, string) {
	if b.MappingField == "" {
		return Unit{}, "mapping_field_empty"
	}
	if r.Source == nil {
		return Unit{}, "no_source"
	}
	defs, err := r.Source.Fields(ctx, entityTypeID, b.BundleID)
	if err != nil {
		return Unit{}, "fields_unavailable"
	}
	if !entities.HasField(defs, b.MappingField) {
		return Unit{}, "mapping_field_missing"
	}

	unit := Unit{
		Kind:         UnitLinkedBundle,
		EntityTypeID: entityTypeID,
		BundleID:     b.BundleID,
		MappingField: b.MappingField,
		FilterBundle: entities.HasField(defs, entities.BundleField),
	}
	for _, key := range settings.EnabledKeys(b.Fields) {
		if !entities.HasField(defs, key) {
			continue
		}
		unit.Fields = append(unit.Fields, Column{Key: key, Label: entities.Label(defs, key)})
	}
	return unit, ""
}
