package settings

// Storage keys of the two settings documents.
const (
	ExportConfigKey = "gdpr.export_csv"
	LinkSettingsKey = "gdpr.export_link"
)

// FieldToggle marks one field key as exported or not. Slices of toggles keep
// the order the fields were configured in.
type FieldToggle struct {
	Key     string `json:"key" yaml:"key"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// BundleConfig selects the records of one bundle and the columns to export.
type BundleConfig struct {
	BundleID     string        `json:"bundleId" yaml:"bundle"`
	Enabled      bool          `json:"enabled" yaml:"enabled"`
	MappingField string        `json:"mappingField" yaml:"mapping_field"`
	Fields       []FieldToggle `json:"fields" yaml:"fields"`
}

// LinkedEntityConfig groups the bundle settings of one entity type.
type LinkedEntityConfig struct {
	EntityTypeID string         `json:"entityTypeId" yaml:"entity_type"`
	Enabled      bool           `json:"enabled" yaml:"enabled"`
	Bundles      []BundleConfig `json:"bundles" yaml:"bundles"`
}

// ExportConfig is the full export settings tree. The zero value exports nothing.
type ExportConfig struct {
	IncludeUser    bool                 `json:"includeUser" yaml:"include_user"`
	UserFields     []FieldToggle        `json:"userFields" yaml:"user_fields"`
	LinkedEntities []LinkedEntityConfig `json:"linkedEntities" yaml:"linked_entities"`
}

// LinkSettings configures the rendered export link.
type LinkSettings struct {
	Classes   string `json:"classes" yaml:"classes"`
	LinkLabel string `json:"linkLabel" yaml:"link_label"`
}

// EnabledKeys returns the enabled keys in configured order, without duplicates.
func EnabledKeys(toggles []FieldToggle) []string {
	seen := make(map[string]struct{}, len(toggles))
	var keys []string
	for _, t := range toggles {
		if !t.Enabled || t.Key == "" {
			continue
		}
		if _, ok := seen[t.Key]; ok {
			continue
		}
		seen[t.Key] = struct{}{}
		keys = append(keys, t.Key)
	}
	return keys
}
