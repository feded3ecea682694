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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📐 Default page geometry (Kindle Basic 11 / Kobo Clara HD)
const (
	DefaultWidth       = 1072
	DefaultHeight      = 1448
	DefaultSharpen     = 1.0
	DefaultContrast    = 1.08
	DefaultJPEGQuality = 92
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses a config file body
	Parse(ctx context.Context, data []byte) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📐 Geometry is a target page size in pixels
type Geometry struct {
	Width  int
	Height int
}

// String returns the geometry as WxH
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// 🔍 Validate checks both dimensions are positive
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Errorf("geometry must be positive, got %s", g)
	}
	return nil
}

// 🎨 RenderOptions controls the per-page enhancement and encoding
type RenderOptions struct {
	Background  RGB     // Canvas fill colour
	Sharpen     float64 // Unsharp mask strength, 0 disables
	Contrast    float64 // Contrast factor, 1.0 leaves pixels unchanged
	DoSharpen   bool    // Whether the unsharp mask runs at all
	DoContrast  bool    // Whether the contrast adjustment runs at all
	JPEGQuality int     // Baseline JPEG quality 1-100
}

// 📚 Config is the complete conversion configuration.
//
// Config is passed by value into the pipeline; nothing in the pipeline mutates it.
type Config struct {
	Device    string        // Preset slug the geometry came from, empty for custom
	Geometry  Geometry      // Target canvas size
	Render    RenderOptions // Enhancement and encoding settings
	KeepTemp  bool          // Keep scratch directories for debugging
	Workers   int           // Pages processed concurrently within a volume
	Ignore    []string      // doublestar patterns of source names to skip
	OutputDir string        // Where archives are written
	Presets   Presets       // Device table used to resolve Device
}

// 🏭 Default returns the documented defaults
func Default() Config {
	return Config{
		Geometry: Geometry{Width: DefaultWidth, Height: DefaultHeight},
		Render: RenderOptions{
			Background:  White,
			Sharpen:     DefaultSharpen,
			Contrast:    DefaultContrast,
			DoSharpen:   true,
			DoContrast:  true,
			JPEGQuality: DefaultJPEGQuality,
		},
		Workers:   1,
		OutputDir: ".",
		Presets:   DefaultPresets(),
	}
}

// 📱 SetDevice selects a preset by slug or display name and applies its geometry
func (cfg *Config) SetDevice(name string) error {
	preset, ok := cfg.Presets.Lookup(name)
	if !ok {
		return errors.Errorf("unknown device %q", name)
	}
	cfg.Device = preset.Slug
	cfg.Geometry = preset.Geometry
	return nil
}

// 📐 SetGeometry applies a custom geometry, clearing any selected device
func (cfg *Config) SetGeometry(g Geometry) {
	cfg.Device = ""
	cfg.Geometry = g
}

// 🔍 Validate checks the configuration and fills defaults for unset optional values
func (cfg *Config) Validate() error {
	if err := cfg.Geometry.Validate(); err != nil {
		return err
	}
	if cfg.Render.JPEGQuality < 1 || cfg.Render.JPEGQuality > 100 {
		return errors.Errorf("jpeg_quality must be between 1 and 100, got %d", cfg.Render.JPEGQuality)
	}
	if cfg.Render.Sharpen < 0 {
		return errors.Errorf("sharpen must not be negative, got %g", cfg.Render.Sharpen)
	}
	if cfg.Render.Contrast < 0 {
		return errors.Errorf("contrast must not be negative, got %g", cfg.Render.Contrast)
	}
	if cfg.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", cfg.Workers)
	}

	// Set defaults
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)
	if cfg.Presets == nil {
		cfg.Presets = DefaultPresets()
	}

	return nil
}

// 📝 String returns a one-line summary of the config
func (cfg *Config) String() string {
	device := cfg.Device
	if device == "" {
		device = "custom"
	}
	return fmt.Sprintf("%s %s bg=%s q=%d -> %s", device, cfg.Geometry, cfg.Render.Background, cfg.Render.JPEGQuality, cfg.OutputDir)
}

// 🎯 Load reads a config file, overlays it on the defaults and validates the result
func Load(ctx context.Context, path string) (Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(strings.ToLower(path))
	if p == nil {
		return cfg, errors.Errorf("no parser found for file: %s", path)
	}

	file, err := p.Parse(ctx, data)
	if err != nil {
		return cfg, errors.Errorf("parsing config: %w", err)
	}

	if err := file.Apply(&cfg); err != nil {
		return cfg, errors.Errorf("applying config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 📄 File is the on-disk shape shared by every config format.
//
// Pointer fields distinguish "absent" from the zero value so a file only overrides what it names.
type File struct {
	Device       *string  `json:"device,omitempty" yaml:"device,omitempty" hcl:"device,optional"`
	TargetWidth  *int     `json:"target_width,omitempty" yaml:"target_width,omitempty" hcl:"target_width,optional"`
	TargetHeight *int     `json:"target_height,omitempty" yaml:"target_height,omitempty" hcl:"target_height,optional"`
	Background   *string  `json:"background,omitempty" yaml:"background,omitempty" hcl:"background,optional"`
	Sharpen      *float64 `json:"sharpen,omitempty" yaml:"sharpen,omitempty" hcl:"sharpen,optional"`
	Contrast     *float64 `json:"contrast,omitempty" yaml:"contrast,omitempty" hcl:"contrast,optional"`
	DoSharpen    *bool    `json:"do_sharpen,omitempty" yaml:"do_sharpen,omitempty" hcl:"do_sharpen,optional"`
	DoContrast   *bool    `json:"do_contrast,omitempty" yaml:"do_contrast,omitempty" hcl:"do_contrast,optional"`
	JPEGQuality  *int     `json:"jpeg_quality,omitempty" yaml:"jpeg_quality,omitempty" hcl:"jpeg_quality,optional"`
	KeepTemp     *bool    `json:"keep_temp,omitempty" yaml:"keep_temp,omitempty" hcl:"keep_temp,optional"`
	Workers      *int     `json:"workers,omitempty" yaml:"workers,omitempty" hcl:"workers,optional"`
	Ignore       []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`
	OutputDir    *string  `json:"output_dir,omitempty" yaml:"output_dir,omitempty" hcl:"output_dir,optional"`
}

// 🔄 Apply overlays the fields present in the file onto cfg.
//
// A device is applied before explicit dimensions, so target_width/target_height win.
func (f *File) Apply(cfg *Config) error {
	if f.Device != nil && *f.Device != "" {
		if err := cfg.SetDevice(*f.Device); err != nil {
			return err
		}
	}
	if f.TargetWidth != nil || f.TargetHeight != nil {
		g := cfg.Geometry
		if f.TargetWidth != nil {
			g.Width = *f.TargetWidth
		}
		if f.TargetHeight != nil {
			g.Height = *f.TargetHeight
		}
		if g != cfg.Geometry {
			cfg.SetGeometry(g)
		}
	}
	if f.Background != nil {
		bg, err := ParseRGB(*f.Background)
		if err != nil {
			return errors.Errorf("parsing background: %w", err)
		}
		cfg.Render.Background = bg
	}
	if f.Sharpen != nil {
		cfg.Render.Sharpen = *f.Sharpen
	}
	if f.Contrast != nil {
		cfg.Render.Contrast = *f.Contrast
	}
	if f.DoSharpen != nil {
		cfg.Render.DoSharpen = *f.DoSharpen
	}
	if f.DoContrast != nil {
		cfg.Render.DoContrast = *f.DoContrast
	}
	if f.JPEGQuality != nil {
		cfg.Render.JPEGQuality = *f.JPEGQuality
	}
	if f.KeepTemp != nil {
		cfg.KeepTemp = *f.KeepTemp
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.Ignore != nil {
		cfg.Ignore = append([]string(nil), f.Ignore...)
	}
	if f.OutputDir != nil {
		cfg.OutputDir = *f.OutputDir
	}
	return nil
}
