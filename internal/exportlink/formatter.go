package exportlink

import (
	"net/url"
	"strings"
)

// ExportPath is the route prefix of the export download.
const ExportPath = "/api/v1/export/"

// Formatter renders a Field as a link to the viewer's own export.
type Formatter struct {
	Classes string
}

// Render returns the link for viewerID. Nothing is rendered for an empty label
// or an anonymous viewer.
func (f Formatter) Render(field Field, viewerID string) (Link, bool) {
	if field.IsEmpty() {
		return Link{}, false
	}
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" || viewerID == "0" {
		return Link{}, false
	}
	return Link{
		Title:   field.LinkLabel,
		URL:     ExportPath + url.PathEscape(viewerID),
		Classes: strings.Fields(f.Classes),
	}, true
}

// Summary describes the formatter settings for admin listings.
func (f Formatter) Summary() []string {
	if strings.TrimSpace(f.Classes) == "" {
		return nil
	}
	return []string{"Classes : " + f.Classes}
}
