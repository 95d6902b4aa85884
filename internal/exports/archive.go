package exports

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ArchiveBuilder zips the generated files of one export.
type ArchiveBuilder struct {
	Now func() time.Time
}

func NewArchiveBuilder() *ArchiveBuilder {
	return &ArchiveBuilder{Now: time.Now}
}

// Build writes export_<unix>.zip into dir. Nil entries are ignored and an empty
// input produces no archive. Any failure to write the archive is reported as
// ErrArchiveUnavailable and leaves no partial file behind.
func (b *ArchiveBuilder) Build(files []*GeneratedFile, dir string) (*Archive, error) {
	var kept []GeneratedFile
	for _, f := range files {
		if f != nil {
			kept = append(kept, *f)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}

	now := b.now()
	name := "export_" + strconv.FormatInt(now.Unix(), 10) + ".zip"
	path := filepath.Join(dir, name)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	if err := writeZip(out, kept, now); err != nil {
		out.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveUnavailable, err)
	}
	return &Archive{
		Filename:  name,
		Path:      path,
		SizeBytes: info.Size(),
		Files:     kept,
	}, nil
}

func writeZip(w io.Writer, files []GeneratedFile, modified time.Time) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		if err := addFile(zw, f, modified); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, f GeneratedFile, modified time.Time) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     filepath.Base(f.Filename),
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, src)
	return err
}

func (b *ArchiveBuilder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}
