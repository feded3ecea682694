package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains string
		check       func(t *testing.T, cfg Config)
	}{
		{
			name: "no_variables",
			env:  map[string]string{},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default().Render, cfg.Render, "render options should be untouched")
			},
		},
		{
			name: "all_variables",
			env: map[string]string{
				"KINDLECBZ_DEVICE":       "kobo-clara-hd",
				"KINDLECBZ_BACKGROUND":   "black",
				"KINDLECBZ_SHARPEN":      "0",
				"KINDLECBZ_CONTRAST":     "1.5",
				"KINDLECBZ_DO_SHARPEN":   "false",
				"KINDLECBZ_DO_CONTRAST":  "true",
				"KINDLECBZ_JPEG_QUALITY": "75",
				"KINDLECBZ_KEEP_TEMP":    "1",
				"KINDLECBZ_WORKERS":      "3",
				"KINDLECBZ_IGNORE":       "__MACOSX/**, **/Thumbs.db",
				"KINDLECBZ_OUTPUT_DIR":   "out",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "kobo-clara-hd", cfg.Device)
				assert.Equal(t, Black, cfg.Render.Background)
				assert.Equal(t, 0.0, cfg.Render.Sharpen)
				assert.Equal(t, 1.5, cfg.Render.Contrast)
				assert.False(t, cfg.Render.DoSharpen)
				assert.True(t, cfg.Render.DoContrast)
				assert.Equal(t, 75, cfg.Render.JPEGQuality)
				assert.True(t, cfg.KeepTemp)
				assert.Equal(t, 3, cfg.Workers)
				assert.Equal(t, []string{"__MACOSX/**", "**/Thumbs.db"}, cfg.Ignore)
				assert.Equal(t, "out", cfg.OutputDir)
			},
		},
		{
			name: "custom_geometry",
			env: map[string]string{
				"KINDLECBZ_TARGET_WIDTH":  "758",
				"KINDLECBZ_TARGET_HEIGHT": "1024",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Geometry{Width: 758, Height: 1024}, cfg.Geometry)
			},
		},
		{
			name:        "bad_integer",
			env:         map[string]string{"KINDLECBZ_JPEG_QUALITY": "high"},
			errContains: "KINDLECBZ_JPEG_QUALITY",
		},
		{
			name:        "bad_bool",
			env:         map[string]string{"KINDLECBZ_KEEP_TEMP": "maybe"},
			errContains: "KINDLECBZ_KEEP_TEMP",
		},
		{
			name:        "bad_colour",
			env:         map[string]string{"KINDLECBZ_BACKGROUND": "mauve"},
			errContains: "parsing background",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := ApplyEnv(&cfg, envMap(tt.env))
			if tt.errContains != "" {
				require.Error(t, err, "apply should fail")
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err, "apply should succeed")
			tt.check(t, cfg)
		})
	}
}
