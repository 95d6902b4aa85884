package entities

// UserEntityType is the entity type id reserved for user accounts. It is
// never offered as a linked entity.
const UserEntityType = "user"

// BundleField is the field key that, when defined on a bundle, stores the
// bundle id of each record.
const BundleField = "type"

// EntityType describes one content entity type.
type EntityType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Bundle is a named sub-category of an entity type.
type Bundle struct {
	EntityTypeID string `json:"entityTypeId"`
	ID           string `json:"id"`
	Label        string `json:"label"`
}

// FieldDefinition describes one field of a bundle.
type FieldDefinition struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Record is one stored entity with its field values in string form.
type Record struct {
	ID     string
	Values map[string]string
}

// Get returns the string value of a field and whether the record has it.
func (r Record) Get(key string) (string, bool) {
	if r.Values == nil {
		return "", false
	}
	v, ok := r.Values[key]
	return v, ok
}

// Query selects the records of one bundle owned by a user.
type Query struct {
	EntityTypeID string
	BundleID     string
	MappingField string
	UserID       string
	// FilterBundle additionally requires the BundleField value to equal BundleID.
	FilterBundle bool
}

// HasField reports whether key is among defs.
func HasField(defs []FieldDefinition, key string) bool {
	for _, d := range defs {
		if d.Key == key {
			return true
		}
	}
	return false
}

// Label returns the label of key in defs, falling back to the key itself.
func Label(defs []FieldDefinition, key string) string {
	for _, d := range defs {
		if d.Key == key {
			if d.Label != "" {
				return d.Label
			}
			break
		}
	}
	return key
}
