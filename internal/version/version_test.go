package version

import (
	"strings"
	"testing"
)

func TestShort(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"unknown", "unknown"},
		{"abc", "abc"},
		{"0123456789abcdef", "0123456"},
		{"0123456-dirty", "0123456-dirty"},
	}
	for _, tt := range tests {
		if got := short(tt.in); got != tt.want {
			t.Errorf("short(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestString_Ldflags(t *testing.T) {
	oldCommit, oldBuilt := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldBuilt })

	Commit, BuildTime = "deadbeefcafe", "2026-01-01T00:00:00Z"
	got := String()
	if !strings.HasPrefix(got, "routecard dev (commit: deadbee,") {
		t.Errorf("String() = %q", got)
	}
	if !strings.Contains(got, "built: 2026-01-01T00:00:00Z") {
		t.Errorf("String() = %q", got)
	}
}
