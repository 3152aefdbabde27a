package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 20, 20},
		{"3", 1, 3},
		{"-2", 1, -2},
		{"007", 1, 7},
		// query params arrive untrimmed; anything unparsable degrades
		{"abc", 20, 20},
		{" 3", 20, 20},
		{"99999999999999999999", 20, 20},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}
