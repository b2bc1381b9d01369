package catalog

import (
	"encoding/json"
	"time"
)

// Kind enumerates the closed set of catalog entity kinds.
type Kind int

const (
	KindShow Kind = iota
	KindSeason
	KindEpisode
	KindMovie
)

func (k Kind) String() string {
	switch k {
	case KindShow:
		return "show"
	case KindSeason:
		return "season"
	case KindEpisode:
		return "episode"
	case KindMovie:
		return "movie"
	default:
		return "unknown"
	}
}

// NumberUnset marks an absent season or episode number. Zero is a valid
// season number (specials), so absence is encoded as a negative value.
const NumberUnset = -1

// Item is the sealed union of the four catalog entity kinds. Dispatch is
// by type switch; the unexported method keeps the set closed.
type Item interface {
	ItemID() string
	ItemKind() Kind
	ItemPath() string
	isItem()
}

// Show is a top-level series entry owned by the external catalog.
type Show struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Year        string            `json:"year,omitempty"`
	PremiereAt  string            `json:"premiere_at,omitempty"`
	Path        string            `json:"path"`
	ProviderIDs map[string]string `json:"provider_ids,omitempty"`
}

func (s *Show) ItemID() string   { return s.ID }
func (s *Show) ItemKind() Kind   { return KindShow }
func (s *Show) ItemPath() string { return s.Path }
func (s *Show) isItem()          {}

// DisplayYear returns the production year, falling back to the premiere
// date's year when no explicit year is recorded.
func (s *Show) DisplayYear() string {
	if s.Year != "" {
		return s.Year
	}
	if len(s.PremiereAt) >= 4 {
		if t, err := time.Parse("2006-01-02", s.PremiereAt); err == nil {
			return t.Format("2006")
		}
		return s.PremiereAt[:4]
	}
	return ""
}

// Season is a season folder entry. Number is NumberUnset when the catalog
// has not assigned one.
type Season struct {
	ID     string `json:"id"`
	ShowID string `json:"show_id"`
	Number int    `json:"number"`
	Name   string `json:"name,omitempty"`
	Path   string `json:"path"`
}

// UnmarshalJSON defaults the season number to NumberUnset when the export
// omits it, so a missing field is not mistaken for season 0.
func (s *Season) UnmarshalJSON(data []byte) error {
	type alias Season
	aux := alias{Number: NumberUnset}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Season(aux)
	return nil
}

func (s *Season) ItemID() string   { return s.ID }
func (s *Season) ItemKind() Kind   { return KindSeason }
func (s *Season) ItemPath() string { return s.Path }
func (s *Season) isItem()          {}

// Episode is an episode file entry. Season, Episode and Absolute numbers
// are NumberUnset when the catalog has not assigned them.
type Episode struct {
	ID       string `json:"id"`
	ShowID   string `json:"show_id"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	Absolute int    `json:"absolute"`
	Title    string `json:"title,omitempty"`
	Path     string `json:"path"`
}

// UnmarshalJSON defaults numbering fields to NumberUnset when the export
// omits them.
func (e *Episode) UnmarshalJSON(data []byte) error {
	type alias Episode
	aux := alias{Season: NumberUnset, Episode: NumberUnset, Absolute: NumberUnset}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Episode(aux)
	return nil
}

func (e *Episode) ItemID() string   { return e.ID }
func (e *Episode) ItemKind() Kind   { return KindEpisode }
func (e *Episode) ItemPath() string { return e.Path }
func (e *Episode) isItem()          {}

// Movie is a standalone movie file entry.
type Movie struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Year        string            `json:"year,omitempty"`
	Path        string            `json:"path"`
	ProviderIDs map[string]string `json:"provider_ids,omitempty"`
}

func (m *Movie) ItemID() string   { return m.ID }
func (m *Movie) ItemKind() Kind   { return KindMovie }
func (m *Movie) ItemPath() string { return m.Path }
func (m *Movie) isItem()          {}

// Notification is an "item changed" event delivered by the host.
type Notification struct {
	Item Item
	At   time.Time
}

// Library is the catalog query surface the reconciler depends on. Lookups
// are the only way the reconciler learns metadata episode counts.
type Library interface {
	Show(id string) (*Show, bool)
	Movie(id string) (*Movie, bool)
	// SeasonsForShow returns the show's seasons ordered by season number;
	// seasons without a number sort last.
	SeasonsForShow(showID string) []*Season
	// EpisodesForShow returns the show's episodes ordered by (season, episode).
	EpisodesForShow(showID string) []*Episode
	// EpisodeCountForSeason reports how many episodes the catalog records
	// for the given season number, 0 when the season is unknown.
	EpisodeCountForSeason(showID string, seasonNumber int) int
	// SeasonName returns the display name the catalog records for a season,
	// empty when none is set.
	SeasonName(showID string, seasonNumber int) string
	Shows() []*Show
	Movies() []*Movie
}
