package username

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercases", input: "Alice", want: "alice"},
		{name: "trims whitespace", input: "  bob  ", want: "bob"},
		{name: "allows separators", input: "a.b_c-d", want: "a.b_c-d"},
		{name: "allows two characters", input: "ab", want: "ab"},
		{name: "allows single character", input: "a", want: "a"},
		{name: "rejects empty", input: "   ", wantErr: true},
		{name: "rejects leading digit", input: "1alice", wantErr: true},
		{name: "rejects non-ascii", input: "ålice", wantErr: true},
		{name: "rejects spaces inside", input: "ali ce", wantErr: true},
		{name: "rejects too long", input: "abcdefghijklmnopqrstuvwxyz0123456789", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Canonicalize(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("canonicalize %q: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("canonicalize %q = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
