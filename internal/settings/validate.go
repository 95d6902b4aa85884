package settings

import (
	"context"
	"errors"
	"fmt"

	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/users"
)

// Issue is an advisory problem found in an ExportConfig. Issues never block a
// save; the affected unit is skipped at export time.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Validate checks cfg against the entity catalog in src.
func Validate(ctx context.Context, cfg ExportConfig, src entities.Source) ([]Issue, error) {
	var issues []Issue

	userDefs := users.FieldDefinitions()
	for i, f := range cfg.UserFields {
		if !entities.HasField(userDefs, f.Key) {
			issues = append(issues, Issue{
				Path:    fmt.Sprintf("userFields[%d]", i),
				Message: fmt.Sprintf("unknown user field %q", f.Key),
			})
		}
	}

	for i, le := range cfg.LinkedEntities {
		base := fmt.Sprintf("linkedEntities[%d]", i)
		if le.EntityTypeID == entities.UserEntityType {
			issues = append(issues, Issue{Path: base, Message: "user accounts are exported through includeUser"})
			continue
		}
		for j, b := range le.Bundles {
			path := fmt.Sprintf("%s.bundles[%d]", base, j)
			defs, err := src.Fields(ctx, le.EntityTypeID, b.BundleID)
			if errors.Is(err, entities.ErrUnknownEntityType) {
				issues = append(issues, Issue{Path: base, Message: fmt.Sprintf("unknown entity type %q", le.EntityTypeID)})
				break
			}
			if errors.Is(err, entities.ErrUnknownBundle) {
				issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("unknown bundle %q", b.BundleID)})
				continue
			}
			if err != nil {
				return nil, err
			}

			if b.MappingField == "" {
				issues = append(issues, Issue{Path: path + ".mappingField", Message: "mapping field is required"})
			} else if !entities.HasField(defs, b.MappingField) {
				issues = append(issues, Issue{
					Path:    path + ".mappingField",
					Message: fmt.Sprintf("mapping field %q is not defined on the bundle", b.MappingField),
				})
			}
			for k, f := range b.Fields {
				if !entities.HasField(defs, f.Key) {
					issues = append(issues, Issue{
						Path:    fmt.Sprintf("%s.fields[%d]", path, k),
						Message: fmt.Sprintf("unknown field %q", f.Key),
					})
				}
			}
		}
	}
	return issues, nil
}
