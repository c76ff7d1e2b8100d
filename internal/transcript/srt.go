package transcript

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCharsPerLine is the subtitle line width used by RenderSRT.
const DefaultCharsPerLine = 42

// RenderSRT renders segments as a SubRip document. Empty segments are skipped
// and numbering stays contiguous.
func RenderSRT(segments []Segment, maxCPL int) string {
	if maxCPL <= 0 {
		maxCPL = DefaultCharsPerLine
	}

	var sb strings.Builder
	n := 0
	for _, seg := range segments {
		text := wrapText(seg.Text, maxCPL)
		if text == "" {
			continue
		}
		if n > 0 {
			sb.WriteByte('\n')
		}
		n++
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n", n, formatSRTTime(seg.Start), formatSRTTime(seg.End), text)
	}
	return sb.String()
}

// formatSRTTime converts seconds to SRT time format HH:MM:SS,mmm.
func formatSRTTime(seconds float64) string {
	totalMillis := int64(math.Round(math.Abs(seconds) * 1000))
	hours := totalMillis / 3_600_000
	minutes := totalMillis / 60_000 % 60
	secs := totalMillis / 1000 % 60
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// wrapText keeps text on one line when it fits within maxCPL, otherwise
// breaks it into at most two lines.
func wrapText(text string, maxCPL int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxCPL {
		return text
	}

	runes := []rune(text)
	pos := splitPosition(runes, maxCPL)
	first := strings.TrimSpace(string(runes[:pos]))
	rest := strings.TrimSpace(string(runes[pos:]))
	if rest == "" {
		return first
	}
	return first + "\n" + rest
}

// splitPosition finds the last space or punctuation break at or before maxLen.
func splitPosition(runes []rune, maxLen int) int {
	for i := min(maxLen, len(runes)-1); i > 0; i-- {
		if runes[i] == ' ' {
			return i
		}
		if unicode.IsPunct(runes[i]) {
			return i + 1
		}
	}
	return maxLen
}
