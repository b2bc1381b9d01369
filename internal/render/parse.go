package render

import (
	"regexp"
	"strconv"
	"strings"
)

// Filename parsing utilities.
//
// Parsing is deliberately tolerant on input: multiple community naming
// conventions are accepted when reading existing files. It is deliberately
// strict on decisions: only unambiguous tokens (S01E02-style) are trusted
// before a destructive action, and looser extractions are flagged tentative.
var (
	// seasonRe matches canonical season tokens like "Season 01", "S01", "s1".
	seasonRe = regexp.MustCompile(`(?i)\b(?:s|season)\.? *(\d+)\b`)

	// seasonAltRe matches alternative season tokens with separators: _Season_01_, season-1.
	seasonAltRe = regexp.MustCompile(`(?i)(?:^|[\s\.\-_])(?:s|season)[\s\.\-_]+(\d+)`)

	// seasonEpisodeRe matches combined season/episode forms: S01E02, 1x02, s1e2.
	seasonEpisodeRe = regexp.MustCompile(`(?i)[sx]?(\d+)[ex](\d+)`)

	// dottedSeasonEpisodeRe matches compact dotted forms: 1.04, 01.4, 10.12.
	// Season is capped at two digits to avoid capturing a leading year.
	dottedSeasonEpisodeRe = regexp.MustCompile(`(?i)(?:^|[\s_\-\.])([0-9]{1,2})[\. _-]([0-9]{1,2})(?:[^0-9]|$)`)

	// videoRe matches video file extensions used to include media files.
	videoRe = regexp.MustCompile(`(?i)\.(mp4|mkv|avi|mov|wmv|flv|webm|mpeg|mpg|m4v|3gp|vob|ts|mts|m2ts|rmvb|divx)$`)

	// subtitleRe matches subtitle file extensions.
	subtitleRe = regexp.MustCompile(`(?i)\.(srt|sub|idx|ass|ssa|smi|vtt|sbv|sami|usf|stl|dks|pjs|jss|psb|rt|scc|cap|sup|dfxp|ttml)$`)

	// episodeNumberRe captures a loose episode number when SxxExx not present.
	episodeNumberRe = regexp.MustCompile(`(?:^|[\s\.\-_]|[Ee])(\d+)(?:[\s\.\-_]|$)`)

	// emptyBracketsRe matches bracket pairs left empty by missing metadata.
	emptyBracketsRe = regexp.MustCompile(`\s*[\(\[\{<]\s*[\)\]\}>]`)

	// langPattern matches trailing language codes before a subtitle
	// extension: .en, .eng, .en-US.
	langPattern = regexp.MustCompile(`(\.[a-zA-Z]{2,3}(?:[-_][a-zA-Z]{2,4})?)$`)

	// resolutionRe matches resolution tags like 1280x720 whose digits would
	// otherwise read as a season/episode pair.
	resolutionRe = regexp.MustCompile(`(?i)\b\d{3,4}x\d{3,4}\b`)

	// encodingTagsRe matches release encoding tags stripped before any
	// numbering is parsed out of a filename.
	encodingTagsRe = regexp.MustCompile(`(?i)\b(?:HDR?|DV|x26[45]|H\.?26[45]|HEVC|AVC|AAC|AC3|DD|DTS|FLAC|MP3|WEB-?DL|BluRay|BDRip|DVDRip|HDTV|720p|1080p|2160p|4K|UHD|SDR|10bit|8bit|PROPER|REPACK|iNTERNAL|LiMiTED|UNRATED|EXTENDED|COMPLETE|MULTI|DUAL|DUBBED|SUBBED|RETAIL|NTSC|PAL|UNCUT|UNCENSORED)\b`)

	// simpleNumberRe matches a standalone number that might represent a season.
	simpleNumberRe = regexp.MustCompile(`^(\d+)|[\s\.\-_](\d+)(?:[\s\.\-_]|$)`)
)

// IsVideo reports whether filename has a recognized video extension.
func IsVideo(filename string) bool {
	return videoRe.MatchString(filename)
}

// IsSubtitle reports whether filename has a recognized subtitle extension.
func IsSubtitle(filename string) bool {
	return subtitleRe.MatchString(filename)
}

// ExtractSeasonNumber attempts to extract a season number from a folder or
// file name. Returns the number and true when found.
func ExtractSeasonNumber(input string) (int, bool) {
	return firstIntFromRegexps(input, seasonRe, seasonAltRe, simpleNumberRe)
}

// IsSeasonFolderName reports whether name matches a season-folder pattern
// such as "Season 02" or "S2". A bare number does not qualify.
func IsSeasonFolderName(name string) bool {
	_, ok := firstIntFromRegexps(name, seasonRe, seasonAltRe)
	return ok
}

// ParseSeasonEpisode extracts season and episode numbers from a filename,
// optionally consulting the parent folder name for season context. Returns
// season, episode, and true when both are found.
func ParseSeasonEpisode(input, parentName string) (int, int, bool) {
	input = stripMediaTags(input)
	// Dotted pattern first because it is otherwise ambiguous with the loose
	// episode fallback.
	if m := dottedSeasonEpisodeRe.FindStringSubmatch(input); len(m) >= 3 {
		season, err1 := strconv.Atoi(m[1])
		episode, err2 := strconv.Atoi(m[2])
		// Guard against false positives like a leading year (2024.05).
		if err1 == nil && err2 == nil && season > 0 && season <= 100 && episode > 0 && episode <= 300 {
			return season, episode, true
		}
	}
	if m := seasonEpisodeRe.FindStringSubmatch(input); len(m) >= 3 {
		season, err1 := strconv.Atoi(m[1])
		episode, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && season <= 100 && episode <= 300 {
			return season, episode, true
		}
	}
	// Fallback: episode from filename, season from the parent folder.
	episode, ok := firstIntFromRegexps(input, episodeNumberRe)
	if !ok || parentName == "" {
		return 0, 0, false
	}
	season, found := ExtractSeasonNumber(parentName)
	if !found {
		return 0, 0, false
	}
	return season, episode, true
}

// ParseEpisodeNumber extracts an episode number from a filename using only
// unambiguous combined tokens (S01E05, 1x05, 1.05). This is the
// conservative parse consulted before destructive actions.
func ParseEpisodeNumber(filename string) (int, bool) {
	filename = stripMediaTags(filename)
	if m := dottedSeasonEpisodeRe.FindStringSubmatch(filename); len(m) >= 3 {
		if episode, err := strconv.Atoi(m[2]); err == nil && episode > 0 && episode <= 300 {
			return episode, true
		}
	}
	if m := seasonEpisodeRe.FindStringSubmatch(filename); len(m) >= 3 {
		season, err1 := strconv.Atoi(m[1])
		episode, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil && season <= 100 && episode <= 300 {
			return episode, true
		}
	}
	return 0, false
}

// LooseEpisodeNumber extracts a bare number that may be an episode number.
// The result is tentative and must never feed a rename directly.
func LooseEpisodeNumber(filename string) (int, bool) {
	return firstIntFromRegexps(stripMediaTags(filename), episodeNumberRe)
}

// stripMediaTags blanks resolution and encoding tags so their digits are
// never read as season or episode numbers.
func stripMediaTags(input string) string {
	out := resolutionRe.ReplaceAllString(input, " ")
	return encodingTagsRe.ReplaceAllString(out, " ")
}

// VerifyEpisodeTokens checks that the season/episode tokens embedded in a
// rendered filename equal the metadata numbers. A name without any embedded
// token passes; a mismatching token is a hard abort upstream.
func VerifyEpisodeTokens(rendered string, season, episode int) bool {
	parsedSeason, parsedEpisode, found := ParseSeasonEpisode(rendered, "")
	if !found {
		return true
	}
	if season >= 0 && parsedSeason != season {
		return false
	}
	if episode >= 0 && parsedEpisode != episode {
		return false
	}
	return true
}

// ExtractExtension returns the file extension including the dot. Subtitle
// files keep their language code, e.g. "movie.en.srt" yields ".en.srt".
func ExtractExtension(filename string) string {
	if IsSubtitle(filename) {
		if suffix := extractSubtitleSuffix(filename); suffix != "" {
			return suffix
		}
	}
	if dotIndex := strings.LastIndex(filename, "."); dotIndex != -1 {
		return filename[dotIndex:]
	}
	return ""
}

func extractSubtitleSuffix(filename string) string {
	subtitleMatch := subtitleRe.FindStringIndex(filename)
	if len(subtitleMatch) == 0 {
		return ""
	}
	beforeExt := filename[:subtitleMatch[0]]
	langMatch := langPattern.FindString(beforeExt)
	return langMatch + filename[subtitleMatch[0]:]
}

func firstIntFromRegexps(input string, regexps ...*regexp.Regexp) (int, bool) {
	for _, re := range regexps {
		m := re.FindStringSubmatch(input)
		if len(m) >= 2 {
			for i := 1; i < len(m); i++ {
				if m[i] == "" {
					continue
				}
				if n, err := strconv.Atoi(m[i]); err == nil {
					return n, true
				}
			}
		}
	}
	return 0, false
}
