package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0700123456", "254700123456"},
		{"+254 700 123 456", "254700123456"},
		{"254700123456", "254700123456"},
		{"700123456", "254700123456"},
		{"0110123456", "254110123456"},
		{"12345", ""},
		{"", ""},
		{"hello", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
