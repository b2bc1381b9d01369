package render

import (
	"fmt"
	"strings"
)

const invalidFilenameChars = "<>:\"/\\|?*"

// sanitizeName strips characters that are unsafe in file names, collapsing
// each run of stripped characters and surrounding whitespace into a single
// space. It fails rather than returning an empty name.
func sanitizeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is empty after sanitization")
	}

	var b strings.Builder
	b.Grow(len(name))

	lastSpace := false
	for _, r := range name {
		if r < 32 || r == 127 || strings.ContainsRune(invalidFilenameChars, r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
			b.WriteRune(' ')
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}

	result := strings.TrimSpace(b.String())
	if result == "" {
		return "", fmt.Errorf("name is empty after sanitization")
	}
	return result, nil
}

// ValidName reports whether name passes the filesystem-safe-name gate used
// before any rename is attempted.
func ValidName(name string) bool {
	sanitized, err := sanitizeName(name)
	return err == nil && sanitized == name
}
