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

package operation

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/walteh/kindlecbz/pkg/source"
	"github.com/walteh/kindlecbz/pkg/transform"
	"gitlab.com/tozd/go/errors"
)

// ❌ PageError is a page that could not be converted
type PageError struct {
	Index int    // Attempt ordinal
	Name  string // Source name
	Path  string // Source path on disk
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// 📄 PageResult is the outcome of one page attempt; Err is nil on success
type PageResult struct {
	Index      int
	Total      int // Pages in the volume
	Name       string
	Output     string           // Encoded page on scratch storage
	SourceSize image.Point      // Decoded dimensions
	Layout     transform.Layout // Where the page landed on the canvas
	Err        *PageError
}

// OK reports whether the page was written.
func (r PageResult) OK() bool {
	return r.Err == nil
}

// processPage decodes, transforms and encodes one page into dir. It never panics.
func processPage(tr *transform.Transformer, page source.Page, dir string, quality int) (res PageResult) {
	res = PageResult{Index: page.Index, Name: page.Name}

	fail := func(err error) PageResult {
		res.Output = ""
		res.Err = &PageError{Index: page.Index, Name: page.Name, Path: page.Path, Err: err}
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			res = fail(errors.Errorf("panic: %v", r))
		}
	}()

	img, err := transform.DecodeFile(page.Path)
	if err != nil {
		return fail(err)
	}
	res.SourceSize = img.Bounds().Size()

	canvas, layout, err := tr.Transform(img)
	if err != nil {
		return fail(errors.Errorf("transforming: %w", err))
	}
	res.Layout = layout

	output := filepath.Join(dir, PageName(page.Index))
	if err := writeJPEG(output, canvas, quality); err != nil {
		return fail(err)
	}
	res.Output = output

	return res
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("creating page file: %w", err)
	}

	if err := transform.EncodeJPEG(f, img, quality); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return errors.Errorf("closing page file: %w", err)
	}
	return nil
}
