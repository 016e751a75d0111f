package repository

import "testing"

func TestListLimitNormalize(t *testing.T) {
	l := ListLimit{Default: 10, Max: 100}
	cases := []struct {
		in, want int
	}{
		{in: 0, want: 10},
		{in: -3, want: 10},
		{in: 1, want: 1},
		{in: 25, want: 25},
		{in: 100, want: 100},
		{in: 1000, want: 100},
	}
	for _, tc := range cases {
		if got := l.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%d): want=%d got=%d", tc.in, tc.want, got)
		}
	}
}

func TestListLimitNormalizeZeroValue(t *testing.T) {
	var l ListLimit
	if got := l.Normalize(0); got != 10 {
		t.Fatalf("Normalize(0): want=%d got=%d", 10, got)
	}
	if got := l.Normalize(50); got != 10 {
		t.Fatalf("Normalize(50): want=%d got=%d", 10, got)
	}
}
