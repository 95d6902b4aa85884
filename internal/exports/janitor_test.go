package exports

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJanitorPrune(t *testing.T) {
	root := t.TempDir()
	now := time.Now()

	write := func(rel string, age time.Duration) string {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		mod := now.Add(-age)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
		return path
	}
	write("42/export_1.zip", 48*time.Hour)
	write("42/export_user_1.csv", 48*time.Hour)
	fresh := write("7/export_2.zip", time.Minute)
	write("7/export_old.csv", 25*time.Hour)

	j := NewJanitor(root, 24*time.Hour)
	j.Now = func() time.Time { return now }
	res, err := j.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if res.Files != 3 || res.Bytes != 12 || res.Dirs != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "42")); !os.IsNotExist(err) {
		t.Fatalf("expected empty user dir to be removed")
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root must be kept: %v", err)
	}
}

func TestJanitorMissingRoot(t *testing.T) {
	j := NewJanitor(filepath.Join(t.TempDir(), "missing"), time.Hour)
	res, err := j.Prune(context.Background())
	if err != nil || res.Files != 0 {
		t.Fatalf("expected no-op, got %+v, %v", res, err)
	}
}

func TestJanitorStart(t *testing.T) {
	j := NewJanitor(t.TempDir(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := j.Start(ctx, "not a schedule"); err == nil {
		t.Fatalf("expected invalid schedule to fail")
	}
	if err := j.Start(ctx, "@hourly"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := j.Start(ctx, "@hourly"); err == nil {
		t.Fatalf("expected second start to fail")
	}
	j.Stop()
	if err := j.Start(ctx, "@every 1h"); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	j.Stop()
}
