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
	"strings"
)

// 📱 Preset maps a reading device to its screen geometry
type Preset struct {
	Slug     string   // Stable identifier used in flags and config files
	Name     string   // Human readable device name
	Geometry Geometry // Screen size in pixels
}

// 📚 Presets is an ordered device table
type Presets []Preset

// 🏭 DefaultPresets returns a fresh copy of the built-in device table
func DefaultPresets() Presets {
	return Presets{
		{Slug: "kindle-basic-11", Name: "Kindle Basic 11", Geometry: Geometry{Width: 1072, Height: 1448}},
		{Slug: "kindle-paperwhite-5", Name: "Kindle Paperwhite 5", Geometry: Geometry{Width: 1236, Height: 1648}},
		{Slug: "kindle-paperwhite-4", Name: "Kindle Paperwhite 4", Geometry: Geometry{Width: 1080, Height: 1440}},
		// landscape-ish panel
		{Slug: "kindle-oasis-3", Name: "Kindle Oasis 3", Geometry: Geometry{Width: 1680, Height: 1264}},
		{Slug: "kobo-clara-hd", Name: "Kobo Clara HD", Geometry: Geometry{Width: 1072, Height: 1448}},
		{Slug: "kobo-libra-2", Name: "Kobo Libra 2", Geometry: Geometry{Width: 1264, Height: 1680}},
		{Slug: "boox-generic", Name: "Boox Generic", Geometry: Geometry{Width: 1200, Height: 1600}},
	}
}

// 🔍 Lookup finds a preset by slug or display name, ignoring case
func (p Presets) Lookup(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, preset := range p {
		if strings.EqualFold(preset.Slug, name) || strings.EqualFold(preset.Name, name) {
			return preset, true
		}
	}
	return Preset{}, false
}

// 📝 Label returns the picker label, e.g. "Kindle Basic 11 (1072×1448)"
func (p Preset) Label() string {
	return p.Name + " (" + strings.Replace(p.Geometry.String(), "x", "×", 1) + ")"
}
