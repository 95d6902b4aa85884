package entities

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// PGSource reads the entity catalog and records from Postgres.
type PGSource struct {
	DB *sql.DB
}

func (s *PGSource) EntityTypes(ctx context.Context) ([]EntityType, error) {
	const query = `
SELECT id, label
FROM entity_types
ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntityType
	for rows.Next() {
		var t EntityType
		if err := rows.Scan(&t.ID, &t.Label); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PGSource) Bundles(ctx context.Context, entityTypeID string) ([]Bundle, error) {
	const query = `
SELECT entity_type, id, label
FROM entity_bundles
WHERE entity_type = $1
ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, entityTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bundle
	for rows.Next() {
		var b Bundle
		if err := rows.Scan(&b.EntityTypeID, &b.ID, &b.Label); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		typeExists, _, err := s.exists(ctx, entityTypeID, "")
		if err != nil {
			return nil, err
		}
		if !typeExists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityTypeID)
		}
	}
	return out, nil
}

func (s *PGSource) Fields(ctx context.Context, entityTypeID, bundleID string) ([]FieldDefinition, error) {
	const query = `
SELECT field_key, label
FROM entity_fields
WHERE entity_type = $1 AND bundle = $2
ORDER BY weight, field_key`
	rows, err := s.DB.QueryContext(ctx, query, entityTypeID, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FieldDefinition
	for rows.Next() {
		var d FieldDefinition
		if err := rows.Scan(&d.Key, &d.Label); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		typeExists, bundleExists, err := s.exists(ctx, entityTypeID, bundleID)
		if err != nil {
			return nil, err
		}
		if !typeExists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityTypeID)
		}
		if !bundleExists {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownBundle, entityTypeID, bundleID)
		}
	}
	return out, nil
}

func (s *PGSource) Find(ctx context.Context, q Query) ([]Record, error) {
	query := `
SELECT id, data
FROM entity_records
WHERE entity_type = $1 AND data->>$2 = $3`
	args := []any{q.EntityTypeID, q.MappingField, q.UserID}
	if q.FilterBundle {
		query += ` AND data->>'` + BundleField + `' = $4`
		args = append(args, q.BundleID)
	}
	query += `
ORDER BY created_at, id`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		values, err := decodeValues(raw)
		if err != nil {
			return nil, fmt.Errorf("decode record %s/%s: %w", q.EntityTypeID, id, err)
		}
		out = append(out, Record{ID: id, Values: values})
	}
	return out, rows.Err()
}

func (s *PGSource) exists(ctx context.Context, entityTypeID, bundleID string) (bool, bool, error) {
	const query = `
SELECT
  EXISTS (SELECT 1 FROM entity_types WHERE id = $1),
  EXISTS (SELECT 1 FROM entity_bundles WHERE entity_type = $1 AND id = $2)`
	var typeExists, bundleExists bool
	if err := s.DB.QueryRowContext(ctx, query, entityTypeID, bundleID).Scan(&typeExists, &bundleExists); err != nil {
		return false, false, err
	}
	return typeExists, bundleExists, nil
}

// decodeValues flattens a JSON object into string field values.
func decodeValues(raw []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(obj))
	for k, v := range obj {
		values[k] = stringValue(v)
	}
	return values, nil
}

// stringValue renders a decoded JSON value the way a field's string form reads:
// scalars as-is, lists joined with ", ", objects as compact JSON.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "1"
		}
		return "0"
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

var _ Source = (*PGSource)(nil)
