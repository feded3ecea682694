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

package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func pages(t *testing.T, dir string, ordinals ...int) []Entry {
	t.Helper()
	entries := make([]Entry, 0, len(ordinals))
	for _, n := range ordinals {
		name := fmt.Sprintf("%04d.jpg", n)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("page-%d", n)), 0644), "writing page should succeed")
		entries = append(entries, Entry{Name: name, Path: path})
	}
	return entries
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		ordinals []int
		want     []string
	}{
		{
			name:     "contiguous",
			ordinals: []int{1, 2, 3},
			want:     []string{"0001.jpg", "0002.jpg", "0003.jpg"},
		},
		{
			name:     "gap_after_failed_page",
			ordinals: []int{1, 2, 4, 5},
			want:     []string{"0001.jpg", "0002.jpg", "0004.jpg", "0005.jpg"},
		},
		{
			name:     "order_as_supplied",
			ordinals: []int{3, 1, 2},
			want:     []string{"0003.jpg", "0001.jpg", "0002.jpg"},
		},
		{
			name:     "empty",
			ordinals: nil,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			entries := pages(t, dir, tt.ordinals...)
			dest := filepath.Join(dir, "vol - kindle.cbz")

			require.NoError(t, NewWriter().Write(context.Background(), entries, dest), "writing should succeed")

			infos, err := List(dest)
			require.NoError(t, err, "listing should succeed")

			names := make([]string, 0, len(infos))
			for _, info := range infos {
				names = append(names, info.Name)
				assert.True(t, info.Stored(), "%s should be stored uncompressed", info.Name)
				assert.True(t, info.Modified.Equal(ModTime), "%s should carry the fixed mod time, got %s", info.Name, info.Modified)
			}
			assert.Equal(t, tt.want, names, "entries should keep supplied order and names")
		})
	}
}

func TestWriteContent(t *testing.T) {
	dir := t.TempDir()
	entries := pages(t, dir, 7)
	dest := filepath.Join(dir, "out.cbz")
	require.NoError(t, NewWriter().Write(context.Background(), entries, dest))

	r, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 1)
	assert.False(t, r.File[0].FileInfo().IsDir(), "no directory entries should be written")

	f, err := r.File[0].Open()
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	assert.Equal(t, "page-7", string(buf[:n]), "entry bytes should match the page file")
}

func TestWriteDeterministic(t *testing.T) {
	dir := t.TempDir()
	entries := pages(t, dir, 1, 2, 3)

	a := filepath.Join(dir, "a.cbz")
	b := filepath.Join(dir, "b.cbz")
	require.NoError(t, NewWriter().Write(context.Background(), entries, a))

	// touch the sources so their mtimes differ between runs
	for _, e := range entries {
		require.NoError(t, os.Chtimes(e.Path, ModTime.AddDate(30, 0, 0), ModTime.AddDate(30, 0, 0)))
	}
	require.NoError(t, NewWriter().Write(context.Background(), entries, b))

	ab, err := os.ReadFile(a)
	require.NoError(t, err)
	bb, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, ab, bb, "equal inputs should give byte-identical archives")
}

func TestWriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "vol - kindle.cbz")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0644))

	require.NoError(t, NewWriter().Write(context.Background(), pages(t, dir, 1), dest))

	infos, err := List(dest)
	require.NoError(t, err, "replaced file should be a valid archive")
	assert.Len(t, infos, 1)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".kindlecbz-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files should not be left behind")
}

func TestWriteFileMode(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "vol - kindle.cbz")

	require.NoError(t, NewWriter().Write(context.Background(), pages(t, dir, 1, 2), dest))

	info, err := os.Stat(dest)
	require.NoError(t, err, "archive should exist")
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "archive should be world readable")
}

func TestWriteErrors(t *testing.T) {
	dir := t.TempDir()
	entries := pages(t, dir, 1)

	t.Run("output_dir_is_a_file", func(t *testing.T) {
		notDir := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(notDir, []byte("x"), 0644))

		err := NewWriter().Write(context.Background(), entries, filepath.Join(notDir, "vol.cbz"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWrite), "error should wrap ErrWrite, got %v", err)
		assert.True(t, errors.Is(err, syscall.ENOTDIR), "error should keep the os cause, got %v", err)
	})

	t.Run("missing_source", func(t *testing.T) {
		out := filepath.Join(dir, "missing.cbz")
		err := NewWriter().Write(context.Background(), []Entry{{Name: "0001.jpg", Path: filepath.Join(dir, "nope.jpg")}}, out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWrite), "error should wrap ErrWrite, got %v", err)
		assert.True(t, errors.Is(err, fs.ErrNotExist), "error should keep the os cause, got %v", err)

		_, statErr := os.Stat(out)
		assert.True(t, os.IsNotExist(statErr), "a failed write should not leave a partial archive")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewWriter().Write(ctx, entries, filepath.Join(dir, "cancelled.cbz"))
		assert.ErrorIs(t, err, context.Canceled, "cancellation should surface")
	})
}

func TestListMissing(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing.cbz"))
	assert.Error(t, err, "listing a missing archive should fail")
}
