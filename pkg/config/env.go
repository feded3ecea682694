package config

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "KINDLECBZ_"

// LookupFunc matches os.LookupEnv
type LookupFunc func(key string) (string, bool)

// 🌱 ApplyEnv overlays KINDLECBZ_* variables onto cfg.
//
// Keys mirror the config file keys upper-cased, e.g. KINDLECBZ_JPEG_QUALITY=85.
// KINDLECBZ_IGNORE is a comma separated list.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var file File
	var err error

	str := func(key string) *string {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		v = strings.TrimSpace(v)
		return &v
	}
	integer := func(key string) *int {
		v := str(key)
		if v == nil || err != nil {
			return nil
		}
		n, perr := strconv.Atoi(*v)
		if perr != nil {
			err = errors.Errorf("parsing %s%s: %w", EnvPrefix, key, perr)
			return nil
		}
		return &n
	}
	float := func(key string) *float64 {
		v := str(key)
		if v == nil || err != nil {
			return nil
		}
		f, perr := strconv.ParseFloat(*v, 64)
		if perr != nil {
			err = errors.Errorf("parsing %s%s: %w", EnvPrefix, key, perr)
			return nil
		}
		return &f
	}
	boolean := func(key string) *bool {
		v := str(key)
		if v == nil || err != nil {
			return nil
		}
		b, perr := strconv.ParseBool(*v)
		if perr != nil {
			err = errors.Errorf("parsing %s%s: %w", EnvPrefix, key, perr)
			return nil
		}
		return &b
	}

	file.Device = str("DEVICE")
	file.TargetWidth = integer("TARGET_WIDTH")
	file.TargetHeight = integer("TARGET_HEIGHT")
	file.Background = str("BACKGROUND")
	file.Sharpen = float("SHARPEN")
	file.Contrast = float("CONTRAST")
	file.DoSharpen = boolean("DO_SHARPEN")
	file.DoContrast = boolean("DO_CONTRAST")
	file.JPEGQuality = integer("JPEG_QUALITY")
	file.KeepTemp = boolean("KEEP_TEMP")
	file.Workers = integer("WORKERS")
	file.OutputDir = str("OUTPUT_DIR")
	if v := str("IGNORE"); v != nil && *v != "" {
		for _, pattern := range strings.Split(*v, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				file.Ignore = append(file.Ignore, pattern)
			}
		}
	}
	if err != nil {
		return err
	}

	return file.Apply(cfg)
}
