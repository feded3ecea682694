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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	pageIndent  = 4  // spaces to indent page entries
	counterWide = 11 // Width for the i/N counter
	nameWidth   = 35 // Base width for page name
	statusWidth = 10 // Width for status text
)

// 🎯 FormatPageLine formats one processed page for display
func FormatPageLine(index, total int, name, status string, failed bool) string {
	prefix := color.GreenString("✓")
	if failed {
		prefix = color.RedString("✗")
	}

	counter := fmt.Sprintf("%-*s", counterWide, fmt.Sprintf("%d/%d", index, total))
	namePart := fmt.Sprintf("%-*s", nameWidth, name)
	statusPart := fmt.Sprintf("%-*s", statusWidth, status)
	if failed {
		statusPart = color.RedString(statusPart)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", pageIndent),
		prefix,
		color.HiBlackString(counter),
		namePart,
		statusPart,
	)
}
