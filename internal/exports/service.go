package exports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"gdpr-backend/internal/settings"
	"gdpr-backend/internal/shared/metrics"
	"gdpr-backend/internal/shared/storage/object"
	"gdpr-backend/internal/shared/telemetry"
	"gdpr-backend/internal/shared/util"
	"gdpr-backend/internal/users"
)

// PublishPrefix is the object store prefix archives are published under.
const PublishPrefix = "gdpr/csv_exports"

// UserGetter loads the user record being exported.
type UserGetter interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

// Service runs exports synchronously for the requesting user.
type Service struct {
	Users    UserGetter
	Settings settings.Store
	Resolver *Resolver
	Writer   *CSVWriter
	Archiver *ArchiveBuilder
	// ExportRoot holds one directory per user id with the generated files.
	ExportRoot string
	// Archives serves finished archives. With Publish set, each archive is
	// first uploaded to it under a hashed user prefix; otherwise it must be
	// rooted at ExportRoot.
	Archives object.ObjectStore
	Publish  bool
}

// Export authorizes the request, writes one CSV per resolved unit and zips
// them. A nil Result.Archive with a nil error means there was nothing to export.
func (s *Service) Export(ctx context.Context, req Request) (res Result, err error) {
	start := time.Now()
	res.RunID = uuid.NewString()

	outcome := "error"
	defer func() {
		res.Duration = time.Since(start)
		metrics.IncExportRequest(outcome)
		metrics.ObserveExportDurationMs(float64(res.Duration.Microseconds()) / 1000.0)
	}()

	if !authorized(req) {
		outcome = "not_found"
		return res, ErrNotFound
	}

	user, err := s.Users.GetByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			outcome = "not_found"
			return res, ErrNotFound
		}
		return res, fmt.Errorf("load user: %w", err)
	}

	cfg, err := s.Settings.GetExportConfig(ctx)
	if err != nil {
		return res, fmt.Errorf("load export settings: %w", err)
	}

	dir, err := s.userDir(user.ID)
	if err != nil {
		outcome = "unavailable"
		s.logFailure(res, user.ID, "prepare_dir", err)
		return res, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}

	units := s.Resolver.Resolve(ctx, cfg)
	res.Units = len(units)

	var generated []*GeneratedFile
	for _, unit := range units {
		file, err := s.Writer.Write(ctx, unit, user, dir)
		switch {
		case err != nil:
			metrics.IncExportUnit(string(unit.Kind), "failed")
			telemetry.Warn("export.unit_failed", map[string]any{
				"run_id":      res.RunID,
				"entity_type": unit.EntityTypeID,
				"bundle":      unit.BundleID,
				"error":       err,
			})
		case file == nil:
			metrics.IncExportUnit(string(unit.Kind), "skipped")
		default:
			metrics.IncExportUnit(string(unit.Kind), "written")
			generated = append(generated, file)
			res.Files = append(res.Files, *file)
		}
	}

	archive, err := s.Archiver.Build(generated, dir)
	if err != nil {
		outcome = "unavailable"
		s.logFailure(res, user.ID, "build_archive", err)
		return res, err
	}
	if archive == nil {
		outcome = "empty"
		telemetry.Info("export.empty", map[string]any{
			"run_id":  res.RunID,
			"user_id": user.ID,
			"units":   res.Units,
		})
		return res, nil
	}

	if err := s.store(ctx, user.ID, archive); err != nil {
		outcome = "unavailable"
		s.logFailure(res, user.ID, "publish_archive", err)
		return res, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}

	res.Archive = archive
	outcome = "archive"
	metrics.ObserveArchiveBytes(archive.SizeBytes)
	telemetry.Info("export.complete", map[string]any{
		"run_id":      res.RunID,
		"user_id":     user.ID,
		"units":       res.Units,
		"files":       len(res.Files),
		"archive":     archive.Filename,
		"size":        humanize.Bytes(uint64(archive.SizeBytes)),
		"storage_key": archive.StorageKey,
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})
	return res, nil
}

// Open streams a finished archive.
func (s *Service) Open(ctx context.Context, archive *Archive) (io.ReadCloser, error) {
	if archive == nil {
		return nil, ErrArchiveUnavailable
	}
	if s.Archives == nil {
		return os.Open(archive.Path)
	}
	return s.Archives.Open(ctx, archive.StorageKey)
}

func authorized(req Request) bool {
	if users.IsAnonymousID(req.TargetID) {
		return false
	}
	return strings.TrimSpace(req.TargetID) == strings.TrimSpace(req.RequesterID)
}

func (s *Service) userDir(userID string) (string, error) {
	name, err := util.SanitizeFileName(userID)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.ExportRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// store sets the archive's storage key, uploading it first when publishing.
func (s *Service) store(ctx context.Context, userID string, archive *Archive) error {
	if !s.Publish || s.Archives == nil {
		rel, err := filepath.Rel(s.ExportRoot, archive.Path)
		if err != nil {
			return err
		}
		archive.StorageKey = filepath.ToSlash(rel)
		return nil
	}

	f, err := os.Open(archive.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	key := path.Join(PublishPrefix, util.HashUserKey(userID), archive.Filename)
	if _, err := s.Archives.SaveWithKey(ctx, key, "application/zip", f); err != nil {
		return err
	}
	archive.StorageKey = key
	return nil
}

func (s *Service) logFailure(res Result, userID, stage string, err error) {
	telemetry.Error("export.failed", map[string]any{
		"run_id":  res.RunID,
		"user_id": userID,
		"stage":   stage,
		"error":   err,
	})
}
