package entities

import "testing"

func TestNewAllowlist_DeduplicatesAndDefaults(t *testing.T) {
	a := NewAllowlist([]AllowedRepository{
		{Repo: "acme/one", Mode: ModeDirect},
		{Repo: "acme/one", Mode: ModePR}, // duplicate, ignored
		{Repo: "acme/two", Mode: "bogus"},
		{Repo: "acme/three"},
	})

	if a.Len() != 3 {
		t.Fatalf("len = %d, want 3", a.Len())
	}

	entry, ok := a.Lookup("acme/one")
	if !ok || entry.Mode != ModeDirect {
		t.Errorf("acme/one = %+v, want direct mode (first wins)", entry)
	}

	for _, repo := range []string{"acme/two", "acme/three"} {
		entry, ok := a.Lookup(repo)
		if !ok || entry.Mode != DefaultMergeMode {
			t.Errorf("%s = %+v, want default mode", repo, entry)
		}
	}

	repos := a.Repos()
	want := []string{"acme/one", "acme/two", "acme/three"}
	for i := range want {
		if repos[i] != want[i] {
			t.Errorf("repos[%d] = %s, want %s", i, repos[i], want[i])
		}
	}
}

func TestMergeMode_Valid(t *testing.T) {
	tests := []struct {
		mode  MergeMode
		valid bool
	}{
		{ModeDirect, true},
		{ModePR, true},
		{"", false},
		{"yolo", false},
	}
	for _, tt := range tests {
		if got := tt.mode.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v, want %v", tt.mode, got, tt.valid)
		}
	}
}
