// Package remap derives stable (season, episode-within-season) assignments
// for files in folders whose on-disk layout contradicts catalog episode
// counts, most commonly a whole multi-season show imported flat under
// "Season 1".
package remap

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	csmap "github.com/mhmtszr/concurrent-swiss-map"
	"github.com/rs/zerolog"

	"github.com/renamarr/renamarr/internal/catalog"
	"github.com/renamarr/renamarr/internal/render"
)

// Source records how an assignment was derived.
type Source string

const (
	SourceMetadata   Source = "metadata"
	SourceBoundaries Source = "season-boundaries"
	SourceFallback   Source = "fallback-heuristic"
)

// Assignment is a (season, episode-within-season) pair for one file.
type Assignment struct {
	Season  int
	Episode int
	Source  Source
}

// Remapper computes and memoizes per-folder assignments. A folder's map is
// computed at most once per run, so files moving mid-run can never shift a
// later file's assignment into a colliding target name.
type Remapper struct {
	lib                  catalog.Library
	fallbackPerSeason    int
	overstuffedThreshold int
	log                  zerolog.Logger

	// folder path -> (file path -> assignment)
	memo *csmap.CsMap[string, map[string]Assignment]
	// computeMu serializes folder map computation between the event path
	// and the background sweep.
	computeMu sync.Mutex
}

func New(lib catalog.Library, fallbackPerSeason, overstuffedThreshold int, log zerolog.Logger) *Remapper {
	return &Remapper{
		lib:                  lib,
		fallbackPerSeason:    fallbackPerSeason,
		overstuffedThreshold: overstuffedThreshold,
		log:                  log,
		memo:                 csmap.Create[string, map[string]Assignment](),
	}
}

// Reset drops all memoized folder maps. The map is cleared in place; the
// fast path in folderMap reads the field without computeMu, so swapping
// the pointer here would race with a concurrent sweep.
func (r *Remapper) Reset() {
	r.computeMu.Lock()
	defer r.computeMu.Unlock()
	r.memo.Clear()
}

// NeedsRemap reports whether the season folder holding the given file
// contradicts the catalog: more files on disk than the catalog records for
// that season number, or an implausibly overstuffed nominal season 1.
func (r *Remapper) NeedsRemap(showID, folder string) bool {
	fileCount := countVideoFiles(folder)
	if fileCount == 0 {
		return false
	}
	season, ok := render.ExtractSeasonNumber(filepath.Base(folder))
	if !ok {
		return false
	}
	metaCount := r.lib.EpisodeCountForSeason(showID, season)
	if metaCount > 0 && fileCount > metaCount {
		return true
	}
	if season == 1 && fileCount >= r.overstuffedThreshold {
		return true
	}
	return false
}

// Resolve returns the assignment for an episode's file.
//
// Resolution order, first available wins: metadata season+episode are
// trusted outright (files are only ever relocated, never renumbered);
// otherwise an absolute episode index is mapped through the catalog's
// season boundaries; otherwise a fixed episodes-per-season split keeps
// files from colliding as a logged last resort.
func (r *Remapper) Resolve(ep *catalog.Episode) (Assignment, bool) {
	if ep.Season >= 0 && ep.Episode >= 0 {
		return Assignment{Season: ep.Season, Episode: ep.Episode, Source: SourceMetadata}, true
	}

	folder := filepath.Dir(ep.Path)
	folderMap := r.folderMap(ep.ShowID, folder)
	if a, ok := folderMap[ep.Path]; ok {
		return a, true
	}

	// File not present when the folder map was computed; resolve its
	// absolute index individually without disturbing the memo.
	abs, ok := absoluteIndex(ep)
	if !ok {
		return Assignment{}, false
	}
	return r.assignAbsolute(ep.ShowID, abs), true
}

// folderMap returns the memoized assignment map for folder, computing it on
// first need. The computed map covers every video file present at compute
// time so assignments stay stable for the rest of the run.
func (r *Remapper) folderMap(showID, folder string) map[string]Assignment {
	if m, ok := r.memo.Load(folder); ok {
		return m
	}

	r.computeMu.Lock()
	defer r.computeMu.Unlock()
	if m, ok := r.memo.Load(folder); ok {
		return m
	}

	m := r.computeFolderMap(showID, folder)
	r.memo.Store(folder, m)
	return m
}

type folderFile struct {
	path string
	abs  int
}

func (r *Remapper) computeFolderMap(showID, folder string) map[string]Assignment {
	entries, err := os.ReadDir(folder)
	if err != nil {
		r.log.Warn().Err(err).Str("folder", folder).Msg("failed to read folder for remap")
		return map[string]Assignment{}
	}

	files := make([]folderFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !render.IsVideo(entry.Name()) {
			continue
		}
		abs, ok := render.ParseEpisodeNumber(entry.Name())
		if !ok {
			abs, ok = render.LooseEpisodeNumber(entry.Name())
			if !ok {
				continue
			}
		}
		files = append(files, folderFile{path: filepath.Join(folder, entry.Name()), abs: abs})
	}
	// Order by parsed episode number, name as tie-break, so the assignment
	// is deterministic across runs.
	sort.Slice(files, func(i, j int) bool {
		if files[i].abs != files[j].abs {
			return files[i].abs < files[j].abs
		}
		return files[i].path < files[j].path
	})

	m := make(map[string]Assignment, len(files))
	for _, f := range files {
		m[f.path] = r.assignAbsolute(showID, f.abs)
	}
	return m
}

// assignAbsolute maps a whole-series episode index to a season and an
// episode-within-season using catalog season boundaries when available.
func (r *Remapper) assignAbsolute(showID string, abs int) Assignment {
	type boundary struct {
		season int
		count  int
	}
	var boundaries []boundary
	for _, season := range r.lib.SeasonsForShow(showID) {
		if season.Number == catalog.NumberUnset || season.Number == 0 {
			continue
		}
		count := r.lib.EpisodeCountForSeason(showID, season.Number)
		if count <= 0 {
			continue
		}
		boundaries = append(boundaries, boundary{season: season.Number, count: count})
	}

	if len(boundaries) == 0 {
		per := r.fallbackPerSeason
		if per <= 0 {
			per = 26
		}
		a := Assignment{
			Season:  (abs-1)/per + 1,
			Episode: (abs-1)%per + 1,
			Source:  SourceFallback,
		}
		r.log.Warn().Str("show", showID).Int("absolute", abs).
			Int("episodes_per_season", per).
			Msg("no usable season boundaries, using fallback episodes-per-season split")
		return a
	}

	remaining := abs
	for _, b := range boundaries {
		if remaining <= b.count {
			return Assignment{Season: b.season, Episode: remaining, Source: SourceBoundaries}
		}
		remaining -= b.count
	}

	// Past the end of every known season: append sequentially to the last
	// known season rather than dropping the file.
	last := boundaries[len(boundaries)-1]
	return Assignment{Season: last.season, Episode: last.count + remaining, Source: SourceBoundaries}
}

func absoluteIndex(ep *catalog.Episode) (int, bool) {
	if ep.Absolute >= 0 {
		return ep.Absolute, true
	}
	base := filepath.Base(ep.Path)
	if abs, ok := render.ParseEpisodeNumber(base); ok {
		return abs, true
	}
	return render.LooseEpisodeNumber(base)
}

func countVideoFiles(folder string) int {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && render.IsVideo(entry.Name()) {
			count++
		}
	}
	return count
}
