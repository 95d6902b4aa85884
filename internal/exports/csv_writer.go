package exports

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/shared/telemetry"
	"gdpr-backend/internal/shared/util"
	"gdpr-backend/internal/users"
)

// Delimiter separates CSV cells.
const Delimiter = ';'

// CSVWriter writes one CSV file per unit.
type CSVWriter struct {
	Source entities.Source
	Now    func() time.Time
}

func NewCSVWriter(src entities.Source) *CSVWriter {
	return &CSVWriter{Source: src, Now: time.Now}
}

// Write produces the CSV for unit in dir. It returns nil, nil when the unit has
// no columns, nothing to export or its records could not be queried, and an
// error only when the file itself could not be written.
func (w *CSVWriter) Write(ctx context.Context, unit Unit, user users.User, dir string) (*GeneratedFile, error) {
	if len(unit.Fields) == 0 {
		return nil, nil
	}
	rows, ok := w.rows(ctx, unit, user)
	if !ok || len(rows) == 0 {
		return nil, nil
	}

	name, err := w.filename(unit)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name)

	f, err := createFile(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	if err := writeRecords(f, unit.Labels(), rows); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close csv: %w", err)
	}

	return &GeneratedFile{
		Filename: name,
		Path:     path,
		Kind:     unit.Kind,
		Columns:  len(unit.Fields),
		Rows:     len(rows),
	}, nil
}

// createFile opens path for writing. The janitor may remove an empty user
// directory between its creation and the first file, so a missing parent is
// re-created once.
func createFile(path string) (*os.File, error) {
	const flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	f, err := os.OpenFile(path, flags, 0o644)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return f, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, flags, 0o644)
}

// writeRecords writes the header and rows. encoding/csv emits a record made of
// a single empty field as a blank line, which readers skip, so such records
// are written as a quoted empty cell.
func writeRecords(out io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(out)
	cw := csv.NewWriter(bw)
	cw.Comma = Delimiter

	write := func(record []string) error {
		if len(record) == 1 && record[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			_, err := bw.WriteString("\"\"\n")
			return err
		}
		return cw.Write(record)
	}

	if err := write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := write(row); err != nil {
			return fmt.Errorf("write csv rows: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// rows builds the data rows. Every row has one cell per column; a value the
// record lacks is written as an empty cell.
func (w *CSVWriter) rows(ctx context.Context, unit Unit, user users.User) ([][]string, bool) {
	if unit.Kind == UnitUser {
		row := make([]string, len(unit.Fields))
		for i, col := range unit.Fields {
			row[i], _ = users.FieldValue(user, col.Key)
		}
		return [][]string{row}, true
	}

	if w.Source == nil {
		return nil, false
	}
	records, err := w.Source.Find(ctx, entities.Query{
		EntityTypeID: unit.EntityTypeID,
		BundleID:     unit.BundleID,
		MappingField: unit.MappingField,
		UserID:       user.ID,
		FilterBundle: unit.FilterBundle,
	})
	if err != nil {
		telemetry.Warn("export.query_failed", map[string]any{
			"entity_type": unit.EntityTypeID,
			"bundle":      unit.BundleID,
			"error":       err,
		})
		return nil, false
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(unit.Fields))
		for i, col := range unit.Fields {
			row[i], _ = rec.Get(col.Key)
		}
		rows = append(rows, row)
	}
	return rows, true
}

func (w *CSVWriter) filename(unit Unit) (string, error) {
	ts := strconv.FormatInt(w.now().Unix(), 10)
	if unit.Kind == UnitUser {
		return "export_user_" + ts + ".csv", nil
	}
	entityType, err := util.SanitizeFileName(unit.EntityTypeID)
	if err != nil {
		return "", fmt.Errorf("entity type %q: %w", unit.EntityTypeID, err)
	}
	bundle, err := util.SanitizeFileName(unit.BundleID)
	if err != nil {
		return "", fmt.Errorf("bundle %q: %w", unit.BundleID, err)
	}
	return "export_" + entityType + "_" + bundle + "_" + ts + ".csv", nil
}

func (w *CSVWriter) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}
