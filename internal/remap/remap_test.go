package remap

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/renamarr/renamarr/internal/catalog"
)

// twoSeasonShow builds a snapshot where season 1 has 36 episodes and
// season 2 has 54, matching a flat 90-file import.
func twoSeasonShow(showID string) *catalog.Snapshot {
	show := &catalog.SnapshotShow{
		Show: catalog.Show{ID: showID, Name: "Long Runner", Path: "/library/Long Runner"},
		Seasons: []*catalog.Season{
			{ID: "s1", Number: 1, Path: "/library/Long Runner/Season 01"},
			{ID: "s2", Number: 2, Path: "/library/Long Runner/Season 02"},
		},
	}
	for i := 1; i <= 90; i++ {
		season, episode := 1, i
		if i > 36 {
			season, episode = 2, i-36
		}
		show.Episodes = append(show.Episodes, &catalog.Episode{
			ID: fmt.Sprintf("e%d", i), Season: season, Episode: episode, Absolute: i,
		})
	}
	return catalog.NewSnapshot([]*catalog.SnapshotShow{show}, nil)
}

func flatFolder(t *testing.T, count int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= count; i++ {
		name := filepath.Join(dir, fmt.Sprintf("Long Runner - %03d.mkv", i))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestResolveMetadataWins(t *testing.T) {
	t.Parallel()
	r := New(twoSeasonShow("show1"), 26, 50, zerolog.Nop())
	ep := &catalog.Episode{ID: "e1", ShowID: "show1", Season: 3, Episode: 9, Path: "/library/x/file.mkv"}

	a, ok := r.Resolve(ep)
	if !ok {
		t.Fatal("Resolve returned no assignment for complete metadata")
	}
	want := Assignment{Season: 3, Episode: 9, Source: SourceMetadata}
	if a != want {
		t.Errorf("Resolve = %+v, want %+v", a, want)
	}
}

func TestResolveSeasonBoundaries(t *testing.T) {
	t.Parallel()
	lib := twoSeasonShow("show1")
	folder := flatFolder(t, 90)
	r := New(lib, 26, 50, zerolog.Nop())

	// File at absolute position 50 lands 14 episodes into season 2.
	ep := &catalog.Episode{
		ID:      "flat50",
		ShowID:  "show1",
		Season:  catalog.NumberUnset,
		Episode: catalog.NumberUnset,
		// The loose number in the filename is the only numbering signal.
		Absolute: catalog.NumberUnset,
		Path:     filepath.Join(folder, "Long Runner - 050.mkv"),
	}
	a, ok := r.Resolve(ep)
	if !ok {
		t.Fatal("Resolve returned no assignment")
	}
	want := Assignment{Season: 2, Episode: 14, Source: SourceBoundaries}
	if a != want {
		t.Errorf("Resolve(position 50 of 36+54) = %+v, want %+v", a, want)
	}
}

func TestResolveFallbackSplit(t *testing.T) {
	t.Parallel()
	// A show with no usable season boundaries at all.
	show := &catalog.SnapshotShow{Show: catalog.Show{ID: "bare", Name: "Bare"}}
	lib := catalog.NewSnapshot([]*catalog.SnapshotShow{show}, nil)
	r := New(lib, 26, 50, zerolog.Nop())

	ep := &catalog.Episode{
		ID: "e30", ShowID: "bare",
		Season: catalog.NumberUnset, Episode: catalog.NumberUnset, Absolute: 30,
		Path: "/library/Bare/file 30.mkv",
	}
	a, ok := r.Resolve(ep)
	if !ok {
		t.Fatal("Resolve returned no assignment")
	}
	want := Assignment{Season: 2, Episode: 4, Source: SourceFallback}
	if a != want {
		t.Errorf("Resolve(absolute 30, 26/season fallback) = %+v, want %+v", a, want)
	}
}

func TestResolvePastKnownSeasons(t *testing.T) {
	t.Parallel()
	r := New(twoSeasonShow("show1"), 26, 50, zerolog.Nop())
	ep := &catalog.Episode{
		ID: "e95", ShowID: "show1",
		Season: catalog.NumberUnset, Episode: catalog.NumberUnset, Absolute: 95,
		Path: "/library/x/file 95.mkv",
	}
	a, ok := r.Resolve(ep)
	if !ok {
		t.Fatal("Resolve returned no assignment")
	}
	// 95 is 5 past the 90 known episodes; it appends to season 2.
	want := Assignment{Season: 2, Episode: 59, Source: SourceBoundaries}
	if a != want {
		t.Errorf("Resolve(absolute 95) = %+v, want %+v", a, want)
	}
}

func TestFolderMapStableAfterMove(t *testing.T) {
	t.Parallel()
	lib := twoSeasonShow("show1")
	folder := flatFolder(t, 90)
	r := New(lib, 26, 50, zerolog.Nop())

	ep40 := &catalog.Episode{
		ID: "f40", ShowID: "show1",
		Season: catalog.NumberUnset, Episode: catalog.NumberUnset, Absolute: catalog.NumberUnset,
		Path: filepath.Join(folder, "Long Runner - 040.mkv"),
	}
	first, ok := r.Resolve(ep40)
	if !ok {
		t.Fatal("Resolve returned no assignment")
	}

	// Simulate earlier files being relocated out of the folder mid-run.
	for i := 1; i <= 10; i++ {
		os.Remove(filepath.Join(folder, fmt.Sprintf("Long Runner - %03d.mkv", i)))
	}

	second, ok := r.Resolve(ep40)
	if !ok {
		t.Fatal("Resolve returned no assignment after moves")
	}
	if first != second {
		t.Errorf("assignment changed after files moved: %+v then %+v", first, second)
	}
}

func TestResetDropsMemoizedFolders(t *testing.T) {
	t.Parallel()
	lib := twoSeasonShow("show1")
	folder := flatFolder(t, 90)
	r := New(lib, 26, 50, zerolog.Nop())

	ep := &catalog.Episode{
		ID: "f40", ShowID: "show1",
		Season: catalog.NumberUnset, Episode: catalog.NumberUnset, Absolute: catalog.NumberUnset,
		Path: filepath.Join(folder, "Long Runner - 040.mkv"),
	}
	if _, ok := r.Resolve(ep); !ok {
		t.Fatal("Resolve returned no assignment")
	}
	if r.memo.Count() == 0 {
		t.Fatal("Resolve did not memoize the folder")
	}

	r.Reset()
	if r.memo.Count() != 0 {
		t.Errorf("memo holds %d folders after Reset, want 0", r.memo.Count())
	}
}

func TestNeedsRemap(t *testing.T) {
	t.Parallel()
	lib := twoSeasonShow("show1")

	overstuffed := t.TempDir()
	season1 := filepath.Join(overstuffed, "Season 01")
	if err := os.Mkdir(season1, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 90; i++ {
		name := filepath.Join(season1, fmt.Sprintf("file %03d.mkv", i))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	healthy := t.TempDir()
	season2 := filepath.Join(healthy, "Season 02")
	if err := os.Mkdir(season2, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		name := filepath.Join(season2, fmt.Sprintf("file %03d.mkv", i))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	r := New(lib, 26, 50, zerolog.Nop())
	if !r.NeedsRemap("show1", season1) {
		t.Errorf("NeedsRemap(90 files, 36 in metadata) = false, want true")
	}
	if r.NeedsRemap("show1", season2) {
		t.Errorf("NeedsRemap(10 files, 54 in metadata) = true, want false")
	}
}
