package status

import (
	"fmt"
	"path/filepath"
)

// Emoji prefixes used by DefaultFormatter
const (
	EmojiProgress  = "⏳"
	EmojiComplete  = "✅"
	EmojiFailed    = "❌"
	EmojiCancelled = "⏹️ "
	EmojiVolume    = "📚"
)

// MsgProgress is the progress line layout: emoji, current, total, percent
const MsgProgress = "%s Progress: %d/%d (%.0f%%)"

// Formatter defines how batch status should be rendered
type Formatter interface {
	// FormatProgress formats a count-based progress message
	FormatProgress(current, total int) string

	// FormatVolume formats the outcome of one volume
	FormatVolume(info VolumeInfo) string

	// FormatSummary formats the outcome of a whole batch
	FormatSummary(s *Summary) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total int) string {
	if current < 0 {
		current = 0
	}
	if total < 0 {
		total = 0
	}

	var percentage float64
	if total > 0 {
		percentage = float64(current) / float64(total) * 100
		if percentage > 100 {
			percentage = 100
		}
	}

	emoji := EmojiProgress
	if current >= total {
		emoji = EmojiComplete
	}
	return fmt.Sprintf(MsgProgress, emoji, current, total, percentage)
}

// FormatVolume formats a volume outcome with emoji
func (f *DefaultFormatter) FormatVolume(info VolumeInfo) string {
	name := filepath.Base(info.Input)
	switch info.Status {
	case StatusDone:
		if info.Failed > 0 {
			return fmt.Sprintf("%s %s → %s (%d pages, %d failed)", EmojiComplete, name, info.ArchivePath, info.Written, info.Failed)
		}
		return fmt.Sprintf("%s %s → %s (%d pages)", EmojiComplete, name, info.ArchivePath, info.Written)
	case StatusFailed:
		return fmt.Sprintf("%s %s: %v", EmojiFailed, name, info.Error)
	case StatusCancelled:
		return fmt.Sprintf("%s %s: cancelled", EmojiCancelled, name)
	default:
		return fmt.Sprintf("%s %s: %s", EmojiVolume, name, info.Status)
	}
}

// FormatSummary formats the batch totals
func (f *DefaultFormatter) FormatSummary(s *Summary) string {
	written, failed := s.Pages()
	done := s.Count(StatusDone)
	total := len(s.Volumes())

	emoji := EmojiComplete
	if !s.OK() {
		emoji = EmojiFailed
	}
	return fmt.Sprintf("%s %d/%d volumes converted, %d pages written, %d pages failed", emoji, done, total, written, failed)
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s Error: %v", EmojiFailed, err)
}
