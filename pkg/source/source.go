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

// Package source turns an input reference (a directory, a zip-based archive or a single
// image) into the ordered list of pages of one volume.
//
// The resolver does no pixel work. Archives are extracted into a caller-owned scratch
// directory; directories and single images are referenced in place.
package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnsupportedInput = errors.Base("unsupported input")
	ErrNoPagesFound     = errors.Base("no pages found")
)

// ArchiveSuffix is appended to a volume's base name to form the output file name.
const ArchiveSuffix = " - kindle.cbz"

// Kind identifies how a volume was supplied.
type Kind int

const (
	KindUnknown Kind = iota
	KindDirectory
	KindArchive
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindArchive:
		return "archive"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
}

var archiveExtensions = map[string]bool{
	".cbz": true,
	".zip": true,
}

// IsImage reports whether name has one of the accepted image extensions.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// IsArchive reports whether name is a zip-based comic archive.
func IsArchive(name string) bool {
	return archiveExtensions[strings.ToLower(filepath.Ext(name))]
}

// Page is one resolved page image.
type Page struct {
	Index int    // 1-based position in the volume
	Name  string // Name relative to the input (file name or archive entry name)
	Path  string // Where the bytes live on disk
}

// Volume is one conversion unit.
type Volume struct {
	Input string
	Kind  Kind
	Pages []Page
}

// BaseName is the name the output archive is derived from.
//
// Files lose their extension; directories keep their full name.
func (v *Volume) BaseName() string {
	return BaseName(v.Input, v.Kind)
}

// ArchiveName is "<base name> - kindle.cbz".
func (v *Volume) ArchiveName() string {
	return v.BaseName() + ArchiveSuffix
}

// BaseName derives the output base name for input.
func BaseName(input string, kind Kind) string {
	base := filepath.Base(filepath.Clean(input))
	if kind == KindDirectory {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Resolver enumerates pages. It keeps no state between calls.
type Resolver struct {
	ignore []string
}

// NewResolver creates a resolver skipping names that match any of the doublestar patterns.
func NewResolver(ignore []string) (*Resolver, error) {
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return &Resolver{ignore: ignore}, nil
}

// Resolve turns input into an ordered volume. Archive entries are extracted below scratchDir.
func (r *Resolver) Resolve(ctx context.Context, input, scratchDir string) (*Volume, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, errors.Errorf("reading input %s: %w", input, err)
	}

	vol := &Volume{Input: input}
	var names []string

	switch {
	case info.IsDir():
		vol.Kind = KindDirectory
		names, err = r.listDirectory(input)
		if err != nil {
			return nil, err
		}
		vol.Pages = pagesFrom(names, func(name string) string { return filepath.Join(input, name) })
	case IsArchive(input):
		vol.Kind = KindArchive
		names, err = r.extractArchive(ctx, input, scratchDir)
		if err != nil {
			return nil, err
		}
		vol.Pages = pagesFrom(names, func(name string) string { return entryPath(scratchDir, name) })
	case IsImage(input):
		vol.Kind = KindImage
		vol.Pages = pagesFrom([]string{filepath.Base(input)}, func(string) string { return input })
	default:
		return nil, errors.Errorf("%w: %s", ErrUnsupportedInput, input)
	}

	if len(vol.Pages) == 0 {
		return nil, errors.Errorf("%w: %s", ErrNoPagesFound, input)
	}

	zerolog.Ctx(ctx).Debug().
		Str("input", input).
		Stringer("kind", vol.Kind).
		Int("pages", len(vol.Pages)).
		Msg("resolved volume")

	return vol, nil
}

// listDirectory returns the image file names directly inside dir, naturally sorted.
func (r *Resolver) listDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("listing directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !IsImage(entry.Name()) || r.ignored(entry.Name()) {
			continue
		}
		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			// follow links the way a file manager would
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			mode = info.Mode()
		}
		if !mode.IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	SortNatural(names)
	return names, nil
}

func (r *Resolver) ignored(name string) bool {
	for _, pattern := range r.ignore {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(name)); ok {
			return true
		}
	}
	return false
}

// SortNatural sorts names in place, comparing embedded digit runs as integers.
func SortNatural(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return natural.Less(names[i], names[j])
	})
}

func pagesFrom(names []string, path func(string) string) []Page {
	pages := make([]Page, 0, len(names))
	for i, name := range names {
		pages = append(pages, Page{
			Index: i + 1,
			Name:  name,
			Path:  path(name),
		})
	}
	return pages
}
