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

package source

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// extractArchive writes every image entry of the archive below dest and returns the entry
// names, naturally sorted.
func (r *Resolver) extractArchive(ctx context.Context, archivePath, dest string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	entries := make(map[string]*zip.File)
	var names []string
	for _, f := range reader.File {
		if f.FileInfo().IsDir() || !IsImage(f.Name) || r.ignored(f.Name) {
			continue
		}
		if !safeEntryName(f.Name) {
			logger.Debug().Str("entry", f.Name).Msg("skipping archive entry outside extraction root")
			continue
		}
		if _, dup := entries[f.Name]; dup {
			// zip allows repeated names; the last one wins like an extraction tool would
			logger.Debug().Str("entry", f.Name).Msg("duplicate archive entry")
		} else {
			names = append(names, f.Name)
		}
		entries[f.Name] = f
	}
	SortNatural(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("extracting %s: %w", archivePath, err)
		}
		if err := extractEntry(entries[name], entryPath(dest, name)); err != nil {
			return nil, errors.Errorf("extracting %s from %s: %w", name, archivePath, err)
		}
	}

	return names, nil
}

func extractEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return errors.Errorf("opening entry: %w", err)
	}
	defer src.Close()

	out, err := os.Create(target)
	if err != nil {
		return errors.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return errors.Errorf("copying entry: %w", err)
	}

	if err := out.Close(); err != nil {
		return errors.Errorf("closing file: %w", err)
	}

	return nil
}

// safeEntryName rejects absolute names and names that climb out of the extraction root.
func safeEntryName(name string) bool {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" || path.IsAbs(name) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return false
	}
	cleaned := path.Clean(name)
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

// entryPath maps an archive entry name to its location below dest.
func entryPath(dest, name string) string {
	return filepath.Join(dest, filepath.FromSlash(path.Clean(strings.ReplaceAll(name, `\`, "/"))))
}
