package settings

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.RWMutex
	export ExportConfig
	link   LinkSettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) GetExportConfig(ctx context.Context) (ExportConfig, error) {
	if err := ctx.Err(); err != nil {
		return ExportConfig{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneExportConfig(s.export), nil
}

func (s *MemoryStore) SaveExportConfig(ctx context.Context, cfg ExportConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.export = cloneExportConfig(cfg)
	return nil
}

func (s *MemoryStore) GetLinkSettings(ctx context.Context) (LinkSettings, error) {
	if err := ctx.Err(); err != nil {
		return LinkSettings{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link, nil
}

func (s *MemoryStore) SaveLinkSettings(ctx context.Context, ls LinkSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link = ls
	return nil
}

func cloneExportConfig(cfg ExportConfig) ExportConfig {
	out := ExportConfig{
		IncludeUser: cfg.IncludeUser,
		UserFields:  append([]FieldToggle(nil), cfg.UserFields...),
	}
	for _, le := range cfg.LinkedEntities {
		copied := LinkedEntityConfig{EntityTypeID: le.EntityTypeID, Enabled: le.Enabled}
		for _, b := range le.Bundles {
			b.Fields = append([]FieldToggle(nil), b.Fields...)
			copied.Bundles = append(copied.Bundles, b)
		}
		out.LinkedEntities = append(out.LinkedEntities, copied)
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
