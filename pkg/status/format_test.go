package status

import (
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

// 🧪 TestProgressFormatting tests progress message formatting
func TestProgressFormatting(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
		msg      string
	}{
		{
			name:     "zero_progress",
			current:  0,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiProgress, 0, 10, 0.0),
			msg:      "should show 0% progress",
		},
		{
			name:     "half_progress",
			current:  5,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiProgress, 5, 10, 50.0),
			msg:      "should show 50% progress",
		},
		{
			name:     "complete",
			current:  10,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 10, 10, 100.0),
			msg:      "should show 100% progress",
		},
		{
			name:     "zero_total",
			current:  0,
			total:    0,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 0, 0, 0.0),
			msg:      "should handle zero total",
		},
		{
			name:     "current_exceeds_total",
			current:  15,
			total:    10,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 15, 10, 100.0),
			msg:      "should cap at 100% when current exceeds total",
		},
		{
			name:     "negative_values",
			current:  -1,
			total:    -1,
			expected: fmt.Sprintf(MsgProgress, EmojiComplete, 0, 0, 0.0),
			msg:      "should clamp negative values to zero",
		},
	}

	formatter := NewDefaultFormatter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatter.FormatProgress(tt.current, tt.total), tt.msg)
		})
	}
}

// 🧪 TestVolumeFormatting tests volume outcome formatting
func TestVolumeFormatting(t *testing.T) {
	tests := []struct {
		name string
		info VolumeInfo
		want string
	}{
		{
			name: "done",
			info: VolumeInfo{Input: "/in/vol1.cbz", Status: StatusDone, ArchivePath: "out/vol1 - kindle.cbz", Written: 12},
			want: "✅ vol1.cbz → out/vol1 - kindle.cbz (12 pages)",
		},
		{
			name: "done_with_failures",
			info: VolumeInfo{Input: "vol2", Status: StatusDone, ArchivePath: "vol2 - kindle.cbz", Written: 9, Failed: 1},
			want: "✅ vol2 → vol2 - kindle.cbz (9 pages, 1 failed)",
		},
		{
			name: "failed",
			info: VolumeInfo{Input: "notes.txt", Status: StatusFailed, Error: assert.AnError},
			want: "❌ notes.txt: assert.AnError general error for testing",
		},
		{
			name: "cancelled",
			info: VolumeInfo{Input: "vol3", Status: StatusCancelled},
			want: "⏹️  vol3: cancelled",
		},
		{
			name: "pending",
			info: VolumeInfo{Input: "vol4", Status: StatusPending},
			want: "📚 vol4: pending",
		},
	}

	formatter := NewDefaultFormatter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatter.FormatVolume(tt.info), "volume line should match")
		})
	}
}

func TestSummaryFormatting(t *testing.T) {
	s := NewSummary()
	s.Record(VolumeInfo{Status: StatusDone, Written: 9, Failed: 1})
	assert.Equal(t, "✅ 1/1 volumes converted, 9 pages written, 1 pages failed", NewDefaultFormatter().FormatSummary(s))

	s.Record(VolumeInfo{Status: StatusFailed})
	assert.Equal(t, "❌ 1/2 volumes converted, 9 pages written, 1 pages failed", NewDefaultFormatter().FormatSummary(s))
}

// 🧪 TestErrorFormatting tests error message formatting
func TestErrorFormatting(t *testing.T) {
	formatter := NewDefaultFormatter()
	assert.Equal(t, "❌ Error: assert.AnError general error for testing", formatter.FormatError(assert.AnError), "should format simple errors")
	assert.Equal(t, "", formatter.FormatError(nil), "should return empty string for nil errors")
}

func TestFormatPageLine(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	assert.Equal(t,
		"    ✓ 3/10        page3.jpg                           ok        ",
		FormatPageLine(3, 10, "page3.jpg", "ok", false),
		"successful page line should be padded")
	assert.Equal(t,
		"    ✗ 10/10       broken.png                          failed    ",
		FormatPageLine(10, 10, "broken.png", "failed", true),
		"failed page line should use the cross")
}
