package settings

import (
	"context"
	"errors"
)

// ErrReadOnly is returned when saving to a store that does not accept writes.
var ErrReadOnly = errors.New("settings store is read-only")

// Store persists the export settings documents. A missing document reads as
// its zero value.
type Store interface {
	GetExportConfig(ctx context.Context) (ExportConfig, error)
	SaveExportConfig(ctx context.Context, cfg ExportConfig) error
	GetLinkSettings(ctx context.Context) (LinkSettings, error)
	SaveLinkSettings(ctx context.Context, ls LinkSettings) error
}
