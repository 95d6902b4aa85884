package entities

import (
	"context"
	"fmt"
	"sync"
)

// MemorySource keeps the entity catalog and records in memory and is safe for
// concurrent use. Records are returned in insertion order.
type MemorySource struct {
	mu      sync.RWMutex
	types   []EntityType
	bundles map[string][]Bundle
	fields  map[string][]FieldDefinition
	records map[string][]Record
}

// NewMemorySource constructs an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		bundles: make(map[string][]Bundle),
		fields:  make(map[string][]FieldDefinition),
		records: make(map[string][]Record),
	}
}

// AddEntityType registers an entity type. Registering an id twice replaces its label.
func (s *MemorySource) AddEntityType(t EntityType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.types {
		if s.types[i].ID == t.ID {
			s.types[i] = t
			return
		}
	}
	s.types = append(s.types, t)
}

// AddBundle registers a bundle and its ordered field definitions. The entity
// type is registered on the fly when missing.
func (s *MemorySource) AddBundle(b Bundle, fields ...FieldDefinition) {
	s.mu.Lock()
	if !s.hasTypeLocked(b.EntityTypeID) {
		s.types = append(s.types, EntityType{ID: b.EntityTypeID, Label: b.EntityTypeID})
	}
	s.bundles[b.EntityTypeID] = append(s.bundles[b.EntityTypeID], b)
	s.fields[fieldsKey(b.EntityTypeID, b.ID)] = append([]FieldDefinition(nil), fields...)
	s.mu.Unlock()
}

// AddRecord stores a record under the given entity type.
func (s *MemorySource) AddRecord(entityTypeID string, r Record) {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	s.mu.Lock()
	s.records[entityTypeID] = append(s.records[entityTypeID], Record{ID: r.ID, Values: values})
	s.mu.Unlock()
}

func (s *MemorySource) EntityTypes(ctx context.Context) ([]EntityType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EntityType(nil), s.types...), nil
}

func (s *MemorySource) Bundles(ctx context.Context, entityTypeID string) ([]Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasTypeLocked(entityTypeID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityTypeID)
	}
	return append([]Bundle(nil), s.bundles[entityTypeID]...), nil
}

func (s *MemorySource) Fields(ctx context.Context, entityTypeID, bundleID string) ([]FieldDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasTypeLocked(entityTypeID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityTypeID)
	}
	defs, ok := s.fields[fieldsKey(entityTypeID, bundleID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownBundle, entityTypeID, bundleID)
	}
	return append([]FieldDefinition(nil), defs...), nil
}

func (s *MemorySource) Find(ctx context.Context, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasTypeLocked(q.EntityTypeID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, q.EntityTypeID)
	}

	var out []Record
	for _, r := range s.records[q.EntityTypeID] {
		if v, ok := r.Values[q.MappingField]; !ok || v != q.UserID {
			continue
		}
		if q.FilterBundle && r.Values[BundleField] != q.BundleID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemorySource) hasTypeLocked(id string) bool {
	for _, t := range s.types {
		if t.ID == id {
			return true
		}
	}
	return false
}

func fieldsKey(entityTypeID, bundleID string) string {
	return entityTypeID + "/" + bundleID
}

var _ Source = (*MemorySource)(nil)
