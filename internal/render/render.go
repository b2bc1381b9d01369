// Package render produces canonical filesystem names from naming templates
// and catalog metadata, and parses numbering back out of existing names.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

// Fields carries the metadata available to a naming template. Season and
// Episode use a negative value for "absent"; string fields use "".
type Fields struct {
	Show       string
	Movie      string
	Title      string // episode or movie title
	SeasonName string
	Year       string
	Season     int
	Episode    int
	Provider   string
	ProviderID string
}

var (
	// placeholderRe matches {var} template placeholders.
	placeholderRe = regexp.MustCompile(`\{([^}]+)\}`)

	// decorationGroupRe matches a literal bracket group such as " (2020)" or
	// " [tmdb-42]" including its leading whitespace. Groups whose
	// placeholders all resolve empty are dropped whole, so missing metadata
	// never leaves dangling decoration like "[tmdb-]".
	decorationGroupRe = regexp.MustCompile(`\s*[\(\[][^\(\)\[\]]*[\)\]]`)
)

// Render resolves a naming template against fields and returns a
// filesystem-safe name. Missing fields collapse together with their
// surrounding decoration. Rendering is idempotent: the same fields always
// produce the same string. An unrenderable template yields "".
func Render(template string, f Fields) string {
	result := decorationGroupRe.ReplaceAllStringFunc(template, func(group string) string {
		placeholders := placeholderRe.FindAllStringSubmatch(group, -1)
		if len(placeholders) == 0 {
			return group
		}
		for _, m := range placeholders {
			if resolve(m[1], f) != "" {
				return group
			}
		}
		return ""
	})

	result = placeholderRe.ReplaceAllStringFunc(result, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		return resolve(name, f)
	})

	result = CleanName(result)
	sanitized, err := sanitizeName(result)
	if err != nil {
		return ""
	}
	return sanitized
}

// resolve maps a placeholder name to its field value. The numeric
// placeholders accept a zero-padding modifier: {season:0} renders the bare
// number, {season:000} pads to three digits. Without a modifier both pad
// to two.
func resolve(name string, f Fields) string {
	name, width := splitPadding(name)
	switch name {
	case "title":
		if f.Title != "" {
			return f.Title
		}
		if f.Movie != "" {
			return f.Movie
		}
		return f.Show
	case "show":
		return f.Show
	case "movie":
		return f.Movie
	case "season_name":
		return f.SeasonName
	case "year":
		return f.Year
	case "season":
		return formatNumber(f.Season, width)
	case "episode":
		return formatNumber(f.Episode, width)
	case "provider":
		return f.Provider
	case "id":
		return f.ProviderID
	default:
		return ""
	}
}

// splitPadding separates a ":000"-style zero-padding modifier from a
// placeholder name. A modifier that is not a run of zeros leaves the name
// intact, so the placeholder falls through as unknown.
func splitPadding(name string) (string, int) {
	base, pad, found := strings.Cut(name, ":")
	if !found {
		return name, 2
	}
	if pad == "" || strings.Trim(pad, "0") != "" {
		return name, 2
	}
	return base, len(pad)
}

func formatNumber(n, width int) string {
	if n < 0 {
		return ""
	}
	return fmt.Sprintf("%0*d", width, n)
}

// CleanName removes artifacts left behind by unresolved template variables:
// empty brackets, doubled spaces, and leading/trailing separator runs.
func CleanName(name string) string {
	if name == "" {
		return ""
	}

	result := emptyBracketsRe.ReplaceAllString(name, "")
	result = strings.Join(strings.Fields(result), " ")
	result = strings.Trim(result, "-_–—|: ")
	return strings.TrimSpace(result)
}

// FilenamesMatch reports whether two names refer to the same canonical name
// once case, whitespace and separator punctuation are normalized. Files that
// already carry the desired name are never touched.
func FilenamesMatch(current, desired string) bool {
	return normalizeForCompare(current) == normalizeForCompare(desired)
}

func normalizeForCompare(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch r {
		case '.', '_', '-', '–', '—':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
