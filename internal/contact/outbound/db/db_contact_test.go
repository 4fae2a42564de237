package db

import "testing"

func TestLikePattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Empty", in: "", want: ""},
		{name: "Plain", in: "alice", want: "%alice%"},
		{name: "EscapesWildcards", in: "50%_a", want: `%50\%\_a%`},
		{name: "EscapesBackslash", in: `a\b`, want: `%a\\b%`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := likePattern(tc.in); got != tc.want {
				t.Fatalf("likePattern(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
