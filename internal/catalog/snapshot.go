package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Snapshot is an in-memory catalog loaded from a JSON export. It implements
// Library and backs both the CLI commands and tests.
type Snapshot struct {
	ShowEntries  []*SnapshotShow `json:"shows"`
	MovieEntries []*Movie        `json:"movies"`

	showsByID  map[string]*SnapshotShow
	moviesByID map[string]*Movie
}

// SnapshotShow groups a show with its seasons and episodes the way the
// export file nests them.
type SnapshotShow struct {
	Show
	Seasons  []*Season  `json:"seasons,omitempty"`
	Episodes []*Episode `json:"episodes,omitempty"`
}

// LoadSnapshot reads a catalog export file and indexes it for lookups.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse catalog snapshot: %w", err)
	}
	snap.reindex()
	return &snap, nil
}

// NewSnapshot builds a snapshot from already-constructed entries (tests).
func NewSnapshot(shows []*SnapshotShow, movies []*Movie) *Snapshot {
	snap := &Snapshot{ShowEntries: shows, MovieEntries: movies}
	snap.reindex()
	return snap
}

func (s *Snapshot) reindex() {
	s.showsByID = make(map[string]*SnapshotShow, len(s.ShowEntries))
	for _, sh := range s.ShowEntries {
		for _, season := range sh.Seasons {
			if season.ShowID == "" {
				season.ShowID = sh.ID
			}
		}
		for _, ep := range sh.Episodes {
			if ep.ShowID == "" {
				ep.ShowID = sh.ID
			}
		}
		s.showsByID[sh.ID] = sh
	}
	s.moviesByID = make(map[string]*Movie, len(s.MovieEntries))
	for _, m := range s.MovieEntries {
		s.moviesByID[m.ID] = m
	}
}

func (s *Snapshot) Show(id string) (*Show, bool) {
	sh, ok := s.showsByID[id]
	if !ok {
		return nil, false
	}
	return &sh.Show, true
}

func (s *Snapshot) Movie(id string) (*Movie, bool) {
	m, ok := s.moviesByID[id]
	return m, ok
}

func (s *Snapshot) SeasonsForShow(showID string) []*Season {
	sh, ok := s.showsByID[showID]
	if !ok {
		return nil
	}
	seasons := make([]*Season, len(sh.Seasons))
	copy(seasons, sh.Seasons)
	sort.SliceStable(seasons, func(i, j int) bool {
		a, b := seasons[i].Number, seasons[j].Number
		if a == NumberUnset {
			return false
		}
		if b == NumberUnset {
			return true
		}
		return a < b
	})
	return seasons
}

func (s *Snapshot) EpisodesForShow(showID string) []*Episode {
	sh, ok := s.showsByID[showID]
	if !ok {
		return nil
	}
	episodes := make([]*Episode, len(sh.Episodes))
	copy(episodes, sh.Episodes)
	sort.SliceStable(episodes, func(i, j int) bool {
		if episodes[i].Season != episodes[j].Season {
			return episodes[i].Season < episodes[j].Season
		}
		return episodes[i].Episode < episodes[j].Episode
	})
	return episodes
}

func (s *Snapshot) EpisodeCountForSeason(showID string, seasonNumber int) int {
	sh, ok := s.showsByID[showID]
	if !ok || seasonNumber == NumberUnset {
		return 0
	}
	count := 0
	for _, ep := range sh.Episodes {
		if ep.Season == seasonNumber {
			count++
		}
	}
	return count
}

func (s *Snapshot) SeasonName(showID string, seasonNumber int) string {
	sh, ok := s.showsByID[showID]
	if !ok {
		return ""
	}
	for _, season := range sh.Seasons {
		if season.Number == seasonNumber {
			return season.Name
		}
	}
	return ""
}

func (s *Snapshot) Shows() []*Show {
	shows := make([]*Show, 0, len(s.ShowEntries))
	for _, sh := range s.ShowEntries {
		shows = append(shows, &sh.Show)
	}
	return shows
}

func (s *Snapshot) Movies() []*Movie {
	movies := make([]*Movie, len(s.MovieEntries))
	copy(movies, s.MovieEntries)
	return movies
}
