package status

import (
	"fmt"
)

// FileFormatter defines how file progress and outcomes should be formatted
type FileFormatter interface {
	// FormatOutcome formats the end of one file
	FormatOutcome(path string, outcome Outcome) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatOutcome formats a worker outcome with emojis
func (f *DefaultFileFormatter) FormatOutcome(path string, outcome Outcome) string {
	switch outcome {
	case OutcomeCompleted:
		return fmt.Sprintf("✨ Transformed %s", path)
	case OutcomeStopped:
		return fmt.Sprintf("⏹️  Stopped %s", path)
	case OutcomeOpenFailed:
		return fmt.Sprintf("🚫 Could not open %s", path)
	case OutcomeFailed:
		return fmt.Sprintf("❌ Failed %s", path)
	default:
		return fmt.Sprintf("❔ Unknown %s", path)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
