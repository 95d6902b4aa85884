package health

import (
	"context"
	"database/sql"
	"os"
	"time"
)

// Service reports whether the export pipeline's dependencies are usable.
type Service struct {
	DB         *sql.DB
	ExportRoot string
	Timeout    time.Duration
}

// NewService constructs a new health service. db may be nil when running on
// in-memory repositories.
func NewService(db *sql.DB, exportRoot string) *Service {
	return &Service{DB: db, ExportRoot: exportRoot, Timeout: 2 * time.Second}
}

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Status runs every check. Checks that do not apply report "skipped".
func (s *Service) Status(ctx context.Context) Report {
	report := Report{OK: true, Checks: map[string]string{}}

	if s.DB == nil {
		report.Checks["database"] = "skipped"
	} else {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := s.DB.PingContext(pingCtx)
		cancel()
		if err != nil {
			report.OK = false
			report.Checks["database"] = err.Error()
		} else {
			report.Checks["database"] = "ok"
		}
	}

	if s.ExportRoot == "" {
		report.Checks["export_root"] = "skipped"
	} else if err := os.MkdirAll(s.ExportRoot, 0o755); err != nil {
		report.OK = false
		report.Checks["export_root"] = err.Error()
	} else {
		report.Checks["export_root"] = "ok"
	}

	return report
}
