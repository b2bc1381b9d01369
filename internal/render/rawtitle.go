package render

import (
	"strings"

	"github.com/moistari/rls"
)

// LooksLikeRawFilename reports whether an episode title from the catalog is
// actually an unparsed release filename rather than a clean title. Such
// titles mean identification is still in flight, so the episode is worth
// retrying later instead of being renamed with a garbage title.
func LooksLikeRawFilename(title string) bool {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return false
	}
	if IsVideo(trimmed) || IsSubtitle(trimmed) {
		return true
	}

	release := rls.ParseString(trimmed)
	if release.Resolution != "" || release.Source != "" || release.Group != "" {
		return true
	}
	// A combined SxxEyy token inside a "title" is a release name artifact.
	if release.Series > 0 && release.Episode > 0 {
		if _, _, found := ParseSeasonEpisode(trimmed, ""); found {
			return true
		}
	}
	// Dotted.separator.titles with no spaces read as release names too.
	if !strings.ContainsRune(trimmed, ' ') && strings.Count(trimmed, ".") >= 2 {
		return true
	}
	return false
}
