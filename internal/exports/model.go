package exports

import "time"

type UnitKind string

const (
	UnitUser         UnitKind = "user"
	UnitLinkedBundle UnitKind = "linked"
)

// Column is one exported field and its header label.
type Column struct {
	Key   string
	Label string
}

// Unit is one resolved CSV file to produce.
type Unit struct {
	Kind         UnitKind
	EntityTypeID string
	BundleID     string
	MappingField string
	// FilterBundle is set when the bundle defines the bundle discriminator field.
	FilterBundle bool
	Fields       []Column
}

// Labels returns the header row.
func (u Unit) Labels() []string {
	labels := make([]string, len(u.Fields))
	for i, c := range u.Fields {
		labels[i] = c.Label
	}
	return labels
}

// GeneratedFile is a CSV written to the user's export directory.
type GeneratedFile struct {
	Filename string
	Path     string
	Kind     UnitKind
	Columns  int
	Rows     int
}

// Archive is the ZIP holding every generated file of one export.
type Archive struct {
	Filename  string
	Path      string
	SizeBytes int64
	Files     []GeneratedFile
	// StorageKey locates the archive in Service.Archives.
	StorageKey string
}

// Request asks for the export of TargetID on behalf of RequesterID.
type Request struct {
	RequesterID string
	TargetID    string
}

// Result describes one export run. Archive is nil when nothing was exported.
type Result struct {
	RunID    string
	Units    int
	Files    []GeneratedFile
	Archive  *Archive
	Duration time.Duration
}
