package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🎨 RGB is an opaque colour
type RGB struct {
	R, G, B uint8
}

var (
	White = RGB{R: 255, G: 255, B: 255}
	Black = RGB{}
)

// NRGBA converts to an opaque image colour
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// String renders the colour as its name when it has one, otherwise #rrggbb
func (c RGB) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// 🔍 ParseRGB accepts "white", "black", "#rrggbb" or "r,g,b"
func ParseRGB(s string) (RGB, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	}

	if strings.HasPrefix(s, "#") {
		hex := strings.TrimPrefix(s, "#")
		if len(hex) != 6 {
			return RGB{}, errors.Errorf("invalid hex colour %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return RGB{}, errors.Errorf("invalid hex colour %q: %w", s, err)
		}
		return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, errors.Errorf("invalid colour %q", s)
	}
	var rgb [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return RGB{}, errors.Errorf("invalid colour component %q: %w", part, err)
		}
		rgb[i] = uint8(v)
	}
	return RGB{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}
