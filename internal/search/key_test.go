package search

import "testing"

func TestNormalizeQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "Batman", want: "batman"},
		{in: "  The  Matrix ", want: "the matrix"},
		{in: "STAR\tWARS", want: "star wars"},
		{in: "amélie", want: "amélie"},
		// Decomposed e + combining acute must match the precomposed form.
		{in: "ame\u0301lie", want: "am\u00e9lie"},
		{in: "", want: ""},
		{in: "   ", want: ""},
	}
	for _, tc := range cases {
		if got := normalizeQuery(tc.in); got != tc.want {
			t.Errorf("normalizeQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSearchCacheKey(t *testing.T) {
	if got := searchCacheKey("The  Matrix ", 3); got != "search:the matrix:3" {
		t.Fatalf("unexpected key %q", got)
	}
	if searchCacheKey("batman", 1) == searchCacheKey("batman", 2) {
		t.Fatalf("distinct pages must produce distinct keys")
	}
}

func TestMovieCacheKey(t *testing.T) {
	if got := movieCacheKey(" tt0372784 "); got != "movie:tt0372784" {
		t.Fatalf("unexpected key %q", got)
	}
}
