package ircclient

import "testing"

func TestIsDirectMessage(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want bool
	}{
		{"direct to nick", []string{"relay", "hello"}, true},
		{"channel traffic", []string{"#general", "hello"}, false},
		{"other nick", []string{"someone", "hello"}, false},
		{"no arguments", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isDirectMessage(tc.args, "relay"); got != tc.want {
				t.Errorf("isDirectMessage(%v) = %v, want %v", tc.args, got, tc.want)
			}
		})
	}
}
