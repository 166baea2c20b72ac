package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StorySize is either a preset width or a pixel width stored as decimal digits.
// The empty value means the size is not set.
type StorySize string

const (
	SizeFullWidth StorySize = "full-width"
	SizeNarrow    StorySize = "narrow"
)

// ParseStorySize normalizes a stored size. Preset names are kept as they are,
// anything else must parse as a number or the size is dropped.
func ParseStorySize(raw string) StorySize {
	value := strings.TrimSpace(raw)
	switch StorySize(value) {
	case SizeFullWidth, SizeNarrow:
		return StorySize(value)
	}
	if value == "" {
		return ""
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return ""
	}
	return pixelsFromFloat(f)
}

// MaxPixelSize bounds numeric widths. Larger values are dropped.
const MaxPixelSize = math.MaxInt32

// pixelsFromFloat rounds f to whole pixels. NaN, infinities and widths
// outside 1..MaxPixelSize are dropped.
func pixelsFromFloat(f float64) StorySize {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	rounded := math.Round(f)
	if rounded < 1 || rounded > MaxPixelSize {
		return ""
	}
	return PixelSize(int(rounded))
}

// PixelSize builds a numeric size.
func PixelSize(px int) StorySize {
	return StorySize(strconv.Itoa(px))
}

// IsPreset reports whether s is one of the named widths.
func (s StorySize) IsPreset() bool {
	return s == SizeFullWidth || s == SizeNarrow
}

// Pixels returns the numeric width when s is not a preset.
func (s StorySize) Pixels() (int, bool) {
	if s == "" || s.IsPreset() {
		return 0, false
	}
	px, err := strconv.Atoi(string(s))
	if err != nil || px < 1 || px > MaxPixelSize {
		return 0, false
	}
	return px, true
}

// MarshalJSON writes presets as strings and pixel widths as numbers.
func (s StorySize) MarshalJSON() ([]byte, error) {
	if px, ok := s.Pixels(); ok {
		return []byte(strconv.Itoa(px)), nil
	}
	if s.IsPreset() {
		return json.Marshal(string(s))
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a string or a number.
func (s *StorySize) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("story size: %w", err)
		}
		*s = ParseStorySize(raw)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("story size: %w", err)
	}
	*s = pixelsFromFloat(f)
	return nil
}
