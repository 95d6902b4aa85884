package exports

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"

	"gdpr-backend/internal/shared/metrics"
	"gdpr-backend/internal/shared/telemetry"
)

// PruneResult summarizes one retention pass.
type PruneResult struct {
	Files int
	Bytes int64
	Dirs  int
}

// Janitor removes generated exports older than Retention from Root.
type Janitor struct {
	Root      string
	Retention time.Duration
	Now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewJanitor(root string, retention time.Duration) *Janitor {
	return &Janitor{Root: root, Retention: retention, Now: time.Now}
}

// Prune deletes expired files under Root and then any user directory left
// empty. Root itself is kept. A missing Root is not an error.
func (j *Janitor) Prune(ctx context.Context) (PruneResult, error) {
	var res PruneResult
	if j.Retention <= 0 {
		return res, nil
	}
	cutoff := j.now().Add(-j.Retention)

	var dirs []string
	err := filepath.WalkDir(j.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == j.Root {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != j.Root {
				dirs = append(dirs, path)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
		res.Files++
		res.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return res, err
	}

	// Deepest first so nested empty directories collapse in one pass.
	sort.Slice(dirs, func(a, b int) bool { return len(dirs[a]) > len(dirs[b]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err == nil {
			res.Dirs++
		}
	}

	metrics.AddPrunedFiles(res.Files)
	return res, nil
}

// Start schedules Prune with a cron spec such as "@hourly" or "0 3 * * *".
// The schedule stops when ctx is canceled.
func (j *Janitor) Start(ctx context.Context, spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", spec, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return errors.New("janitor already running")
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { j.run(ctx) }); err != nil {
		return fmt.Errorf("schedule retention: %w", err)
	}
	c.Start()
	j.cron = c

	telemetry.Info("export.janitor_started", map[string]any{
		"root":      j.Root,
		"schedule":  spec,
		"retention": j.Retention.String(),
	})

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}

func (j *Janitor) run(ctx context.Context) {
	res, err := j.Prune(ctx)
	if err != nil {
		telemetry.Error("export.prune_failed", map[string]any{"root": j.Root, "error": err})
		return
	}
	telemetry.Info("export.pruned", map[string]any{
		"root":  j.Root,
		"files": res.Files,
		"dirs":  res.Dirs,
		"size":  humanize.Bytes(uint64(res.Bytes)),
	})
}

func (j *Janitor) now() time.Time {
	if j.Now == nil {
		return time.Now()
	}
	return j.Now()
}
