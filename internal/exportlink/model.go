package exportlink

import "strings"

// Field holds the stored label of an export link.
type Field struct {
	LinkLabel string `json:"linkLabel"`
}

// IsEmpty reports whether there is no label to render.
func (f Field) IsEmpty() bool {
	return strings.TrimSpace(f.LinkLabel) == ""
}

// Link is a rendered export link.
type Link struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Classes []string `json:"classes,omitempty"`
}
