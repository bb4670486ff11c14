package ai

import (
	"errors"
	"fmt"
	"strings"
)

var ErrParseFailed = errors.New("parse_failed")

var knownCategories = map[string]bool{
	"ORDER":     true,
	"PAYMENT":   true,
	"DELIVERY":  true,
	"COMPLAINT": true,
	"OTHER":     true,
}

// ParseAnalysis reads the strict two-line model output: translation, then a
// category label. Unknown labels fall back to OTHER rather than failing —
// a sloppy label is not a reason to lose the translation.
func ParseAnalysis(text string) (*Analysis, error) {
	lines := make([]string, 0, 2)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrParseFailed)
	}
	analysis := &Analysis{
		Translation: lines[0],
		Category:    "OTHER",
	}
	if len(lines) >= 2 {
		label := strings.ToUpper(strings.TrimSpace(lines[len(lines)-1]))
		if knownCategories[label] {
			analysis.Category = label
		}
	}
	return analysis, nil
}
