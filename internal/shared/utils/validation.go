package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Request size limits
const (
	MaxNotepadBytes = 1 << 20
	MaxPromptBytes  = 16 << 10
	MaxAppIDLength  = 64

	// Windows may be dragged partly off screen but not to absurd offsets
	maxCoordinate = 1e6
)

// appIDPattern allows alphanumeric, hyphens, underscores
var appIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAppID checks the shape of a catalog id
func ValidateAppID(appID string) error {
	if appID == "" {
		return errors.New("app_id is required")
	}
	if len(appID) > MaxAppIDLength {
		return fmt.Errorf("app_id exceeds %d characters", MaxAppIDLength)
	}
	if !appIDPattern.MatchString(appID) {
		return errors.New("app_id contains invalid characters")
	}
	return nil
}

// ValidatePosition rejects coordinates that are not finite or are far out
// of any screen
func ValidatePosition(x, y float64) error {
	for _, v := range []float64{x, y} {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxCoordinate {
			return fmt.Errorf("position %v is out of range", v)
		}
	}
	return nil
}

// ValidateText checks UTF-8 validity and size
func ValidateText(text string, maxBytes int) error {
	if len(text) > maxBytes {
		return fmt.Errorf("text size %d bytes exceeds maximum %d bytes", len(text), maxBytes)
	}
	if !utf8.ValidString(text) {
		return errors.New("text is not valid UTF-8")
	}
	return nil
}

// ParseWindowID parses a window id path segment
func ParseWindowID(raw string) (int, error) {
	windowID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("window id %q must be an integer", raw)
	}
	return windowID, nil
}
