package identity

import "testing"

func TestComputeFirstTime(t *testing.T) {
	t.Parallel()
	d := New([]string{"tmdb", "tvdb"})
	state := d.Compute("show1", map[string]string{"tmdb": "42"})
	if !state.FirstTime || state.Changed {
		t.Errorf("first sighting = %+v, want FirstTime", state)
	}
}

func TestComputeUnchanged(t *testing.T) {
	t.Parallel()
	d := New([]string{"tmdb", "tvdb"})
	ids := map[string]string{"tmdb": "42", "imdb": "tt0903747"}
	d.Compute("show1", ids)
	state := d.Compute("show1", ids)
	if state.FirstTime || state.Changed {
		t.Errorf("repeat sighting = %+v, want unchanged", state)
	}
}

func TestComputeChangedProvider(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		before  map[string]string
		after   map[string]string
		want    string
	}{
		{
			name:   "value_changed",
			before: map[string]string{"tmdb": "42"},
			after:  map[string]string{"tmdb": "99"},
			want:   "tmdb",
		},
		{
			name:   "provider_added",
			before: map[string]string{"tmdb": "42"},
			after:  map[string]string{"tmdb": "42", "tvdb": "7"},
			want:   "tvdb",
		},
		{
			name:   "preference_order_wins",
			before: map[string]string{"tmdb": "1", "tvdb": "1"},
			after:  map[string]string{"tmdb": "2", "tvdb": "2"},
			want:   "tmdb",
		},
		{
			name:   "removal_reported",
			before: map[string]string{"tmdb": "42", "tvdb": "7"},
			after:  map[string]string{"tmdb": "42"},
			want:   "tvdb",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := New([]string{"tmdb", "tvdb"})
			d.Compute("show1", tc.before)
			state := d.Compute("show1", tc.after)
			if !state.Changed {
				t.Fatalf("state = %+v, want Changed", state)
			}
			if state.ChangedProvider != tc.want {
				t.Errorf("ChangedProvider = %q, want %q", state.ChangedProvider, tc.want)
			}
		})
	}
}

func TestFingerprintOrderIndependent(t *testing.T) {
	t.Parallel()
	a := Fingerprint(map[string]string{"tmdb": "42", "tvdb": "7", "imdb": "tt1"})
	b := Fingerprint(map[string]string{"imdb": "tt1", "tvdb": "7", "tmdb": "42"})
	if a != b {
		t.Errorf("Fingerprint differs for identical sets: %d vs %d", a, b)
	}
	c := Fingerprint(map[string]string{"tmdb": "43", "tvdb": "7", "imdb": "tt1"})
	if a == c {
		t.Errorf("Fingerprint identical for different sets")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	d := New(nil)
	d.Compute("show1", map[string]string{"tmdb": "42"})
	d.Reset()
	state := d.Compute("show1", map[string]string{"tmdb": "42"})
	if !state.FirstTime {
		t.Errorf("sighting after Reset = %+v, want FirstTime", state)
	}
}
