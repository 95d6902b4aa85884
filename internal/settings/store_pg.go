package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGStore keeps each settings document as a jsonb row of the config table.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) GetExportConfig(ctx context.Context) (ExportConfig, error) {
	var cfg ExportConfig
	if err := s.load(ctx, ExportConfigKey, &cfg); err != nil {
		return ExportConfig{}, err
	}
	return cfg, nil
}

func (s *PGStore) SaveExportConfig(ctx context.Context, cfg ExportConfig) error {
	return s.save(ctx, ExportConfigKey, cfg)
}

func (s *PGStore) GetLinkSettings(ctx context.Context) (LinkSettings, error) {
	var ls LinkSettings
	if err := s.load(ctx, LinkSettingsKey, &ls); err != nil {
		return LinkSettings{}, err
	}
	return ls, nil
}

func (s *PGStore) SaveLinkSettings(ctx context.Context, ls LinkSettings) error {
	return s.save(ctx, LinkSettingsKey, ls)
}

func (s *PGStore) load(ctx context.Context, name string, dst any) error {
	const query = `
SELECT data
FROM config
WHERE name = $1
LIMIT 1`
	var raw []byte
	err := s.DB.QueryRowContext(ctx, query, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *PGStore) save(ctx context.Context, name string, value any) error {
	const query = `
INSERT INTO config (name, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET
  data = EXCLUDED.data,
  updated_at = now()`
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = s.DB.ExecContext(ctx, query, name, data)
	return err
}

var _ Store = (*PGStore)(nil)
