package settings

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the YAML form of both settings documents, keyed by storage key.
type Document struct {
	Export ExportConfig `yaml:"gdpr.export_csv"`
	Link   LinkSettings `yaml:"gdpr.export_link"`
}

// DecodeDocument parses a YAML settings document. Unknown keys are rejected so
// typos in field names surface instead of silently disabling an export.
func DecodeDocument(r io.Reader) (Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("decode settings yaml: %w", err)
	}
	return doc, nil
}

// EncodeDocument writes doc as YAML.
func EncodeDocument(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode settings yaml: %w", err)
	}
	return enc.Close()
}
