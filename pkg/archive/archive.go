// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package archive writes and lists the comic book archives produced for each volume.
//
// Archives are plain zip containers. Every entry is stored uncompressed, in the order it
// was given, with a fixed modification time so the same pages always produce the same bytes.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var ErrWrite = errors.Base("writing archive")

// ModTime is stamped on every entry.
var ModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// FileMode is the permission of written archives and of every entry.
const FileMode os.FileMode = 0o644

// 📄 Entry is one file to store: Name inside the archive, Path on disk
type Entry struct {
	Name string
	Path string
}

// 📋 EntryInfo describes an entry of an existing archive
type EntryInfo struct {
	Name     string
	Size     uint64
	Method   uint16
	Modified time.Time
}

// Stored reports whether the entry is uncompressed.
func (e EntryInfo) Stored() bool {
	return e.Method == zip.Store
}

// 📦 Writer packs page files into an archive
type Writer struct{}

// NewWriter returns a Writer
func NewWriter() *Writer {
	return &Writer{}
}

// 💾 Write stores entries at dest, replacing any existing file only once the archive is
// complete. An empty entry list writes a valid empty archive.
func (w *Writer) Write(ctx context.Context, entries []Entry, dest string) error {
	logger := zerolog.Ctx(ctx)

	if err := ctx.Err(); err != nil {
		return errors.Errorf("writing %s: %w", dest, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".kindlecbz-*.tmp")
	if err != nil {
		return errors.Errorf("%w: creating temp file: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()

	// removed on every failure path below; a no-op once renamed
	defer os.Remove(tmpName)

	if err := writeZip(ctx, tmp, entries); err != nil {
		tmp.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Errorf("writing %s: %w", dest, ctxErr)
		}
		return errors.Errorf("%w: %s: %w", ErrWrite, dest, err)
	}

	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		return errors.Errorf("%w: setting file mode: %w", ErrWrite, err)
	}

	if err := tmp.Close(); err != nil {
		return errors.Errorf("%w: closing temp file: %w", ErrWrite, err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return errors.Errorf("%w: renaming into place: %w", ErrWrite, err)
	}

	logger.Debug().Str("path", dest).Int("entries", len(entries)).Msg("wrote archive")
	return nil
}

func writeZip(ctx context.Context, out io.Writer, entries []Entry) error {
	zw := zip.NewWriter(out)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addEntry(zw, e); err != nil {
			return errors.Errorf("adding %s: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Errorf("finishing zip: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, e Entry) error {
	src, err := os.Open(e.Path)
	if err != nil {
		return errors.Errorf("opening source: %w", err)
	}
	defer src.Close()

	hdr := &zip.FileHeader{
		Name:     e.Name,
		Method:   zip.Store,
		Modified: ModTime,
	}
	hdr.SetMode(FileMode)

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return errors.Errorf("creating header: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Errorf("copying data: %w", err)
	}
	return nil
}

// 🔍 List returns the entries of the archive at path in stored order
func List(path string) ([]EntryInfo, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Errorf("opening archive %s: %w", path, err)
	}
	defer reader.Close()

	infos := make([]EntryInfo, 0, len(reader.File))
	for _, f := range reader.File {
		infos = append(infos, EntryInfo{
			Name:     f.Name,
			Size:     f.UncompressedSize64,
			Method:   f.Method,
			Modified: f.Modified,
		})
	}
	return infos, nil
}
