package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/renamarr/renamarr/internal/fsops"
)

func seasonName(season int) string {
	return fmt.Sprintf("Season %02d", season)
}

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func newNormalizer() *Normalizer {
	return New(fsops.New(false, nil, zerolog.Nop()), zerolog.Nop())
}

func TestNormalizeFlattensNestedSeason(t *testing.T) {
	t.Parallel()
	show := filepath.Join(t.TempDir(), "Foo")
	inner := filepath.Join(show, "Season 1", "Season 1")
	mkdirAll(t, inner)
	touch(t, filepath.Join(inner, "Foo S01E01.mkv"))
	touch(t, filepath.Join(inner, "Foo S01E02.mkv"))

	moves, err := newNormalizer().Normalize(context.Background(), show, seasonName)
	if err != nil {
		t.Fatal(err)
	}
	if moves.Len() != 2 {
		t.Errorf("moves.Len() = %d, want 2", moves.Len())
	}
	if _, err := os.Stat(filepath.Join(show, "Season 01", "Foo S01E01.mkv")); err != nil {
		t.Errorf("flattened file not in canonical season folder: %v", err)
	}
	if _, err := os.Stat(inner); !os.IsNotExist(err) {
		t.Errorf("inner season folder still present")
	}

	// A catalog path recorded before normalization follows the file through
	// both the flatten and the outer folder rename.
	got := moves.Rebase(filepath.Join(inner, "Foo S01E01.mkv"))
	want := filepath.Join(show, "Season 01", "Foo S01E01.mkv")
	if got != want {
		t.Errorf("Rebase = %q, want %q", got, want)
	}
	if untouched := moves.Rebase(filepath.Join(show, "poster.jpg")); untouched != filepath.Join(show, "poster.jpg") {
		t.Errorf("Rebase changed an untouched path to %q", untouched)
	}
}

func TestNormalizeMigratesLooseFilesWithSeasonToken(t *testing.T) {
	t.Parallel()
	show := filepath.Join(t.TempDir(), "Foo")
	mkdirAll(t, filepath.Join(show, "Season 01"))
	touch(t, filepath.Join(show, "Foo S02E03.mkv"))
	touch(t, filepath.Join(show, "ambiguous.mkv"))

	moves, err := newNormalizer().Normalize(context.Background(), show, seasonName)
	if err != nil {
		t.Fatal(err)
	}
	if moves.Len() != 1 {
		t.Errorf("moves.Len() = %d, want 1", moves.Len())
	}
	if _, err := os.Stat(filepath.Join(show, "Season 02", "Foo S02E03.mkv")); err != nil {
		t.Errorf("tokened file not migrated to its season: %v", err)
	}
	got := moves.Rebase(filepath.Join(show, "Foo S02E03.mkv"))
	if want := filepath.Join(show, "Season 02", "Foo S02E03.mkv"); got != want {
		t.Errorf("Rebase = %q, want %q", got, want)
	}
	// With a mixed layout, a file without any season token stays put.
	if _, err := os.Stat(filepath.Join(show, "ambiguous.mkv")); err != nil {
		t.Errorf("ambiguous loose file was moved: %v", err)
	}
}

func TestNormalizeFlatShowDefaultsToSeasonOne(t *testing.T) {
	t.Parallel()
	show := filepath.Join(t.TempDir(), "Foo")
	mkdirAll(t, show)
	touch(t, filepath.Join(show, "episode one.mkv"))
	touch(t, filepath.Join(show, "episode two.mkv"))

	moves, err := newNormalizer().Normalize(context.Background(), show, seasonName)
	if err != nil {
		t.Fatal(err)
	}
	if moves.Len() != 2 {
		t.Errorf("moves.Len() = %d, want 2", moves.Len())
	}
	for _, name := range []string{"episode one.mkv", "episode two.mkv"} {
		if _, err := os.Stat(filepath.Join(show, "Season 01", name)); err != nil {
			t.Errorf("%s not migrated to Season 01: %v", name, err)
		}
	}
}

func TestNormalizeAlreadyCanonicalIsNoop(t *testing.T) {
	t.Parallel()
	show := filepath.Join(t.TempDir(), "Foo")
	mkdirAll(t, filepath.Join(show, "Season 01"))
	touch(t, filepath.Join(show, "Season 01", "Foo S01E01.mkv"))

	moves, err := newNormalizer().Normalize(context.Background(), show, seasonName)
	if err != nil {
		t.Fatal(err)
	}
	if moves.Len() != 0 {
		t.Errorf("moves.Len() = %d, want 0", moves.Len())
	}
	if _, err := os.Stat(filepath.Join(show, "Season 01", "Foo S01E01.mkv")); err != nil {
		t.Errorf("canonical layout disturbed: %v", err)
	}
}

func TestNormalizeMissingFolderFails(t *testing.T) {
	t.Parallel()
	_, err := newNormalizer().Normalize(context.Background(), filepath.Join(t.TempDir(), "nope"), seasonName)
	if err == nil {
		t.Error("Normalize on a missing folder did not fail")
	}
}
