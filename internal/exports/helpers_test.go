package exports

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/settings"
	"gdpr-backend/internal/users"
)

var fixedNow = time.Unix(1700000000, 0)

func fixedClock() time.Time { return fixedNow }

func orderSource() *entities.MemorySource {
	src := entities.NewMemorySource()
	src.AddEntityType(entities.EntityType{ID: "order", Label: "Order"})
	src.AddBundle(entities.Bundle{EntityTypeID: "order", ID: "order", Label: "Order"},
		entities.FieldDefinition{Key: "customer_id", Label: "Customer"},
		entities.FieldDefinition{Key: "total", Label: "Total"},
		entities.FieldDefinition{Key: "note", Label: "Note"},
	)
	src.AddRecord("order", entities.Record{ID: "1", Values: map[string]string{"customer_id": "42", "total": "10.00"}})
	src.AddRecord("order", entities.Record{ID: "2", Values: map[string]string{"customer_id": "42", "total": "20.00"}})
	src.AddRecord("order", entities.Record{ID: "3", Values: map[string]string{"customer_id": "7", "total": "99.00"}})
	return src
}

// scenarioConfig exports the user's email and the totals of their orders.
func scenarioConfig() settings.ExportConfig {
	return settings.ExportConfig{
		IncludeUser: true,
		UserFields:  []settings.FieldToggle{{Key: "email", Enabled: true}},
		LinkedEntities: []settings.LinkedEntityConfig{{
			EntityTypeID: "order",
			Enabled:      true,
			Bundles: []settings.BundleConfig{{
				BundleID:     "order",
				Enabled:      true,
				MappingField: "customer_id",
				Fields:       []settings.FieldToggle{{Key: "total", Enabled: true}},
			}},
		}},
	}
}

func newTestService(t *testing.T, cfg settings.ExportConfig) (*Service, string) {
	t.Helper()
	ctx := context.Background()

	userRepo := users.NewMemoryRepo()
	if err := userRepo.Upsert(ctx, users.User{ID: "42", Email: "a@example.com", FullName: "Ada Lovelace"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	store := settings.NewMemoryStore()
	if err := store.SaveExportConfig(ctx, cfg); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	src := orderSource()
	root := t.TempDir()
	writer := NewCSVWriter(src)
	writer.Now = fixedClock
	archiver := NewArchiveBuilder()
	archiver.Now = fixedClock

	return &Service{
		Users:      userRepo,
		Settings:   store,
		Resolver:   NewResolver(src),
		Writer:     writer,
		Archiver:   archiver,
		ExportRoot: root,
	}, root
}

func readCSV(t *testing.T, r io.Reader) [][]string {
	t.Helper()
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

// unzip returns the parsed CSV of every archive entry keyed by entry name.
func unzip(t *testing.T, data []byte) map[string][][]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	out := make(map[string][][]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		out[f.Name] = readCSV(t, rc)
		rc.Close()
	}
	return out
}

type failingSource struct {
	*entities.MemorySource
}

func (failingSource) Find(context.Context, entities.Query) ([]entities.Record, error) {
	return nil, errors.New("storage offline")
}
