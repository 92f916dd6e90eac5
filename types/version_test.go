package types //nolint:revive // types is a valid package name

import (
	"strconv"
	"strings"
	"testing"
)

func TestVersion_IsSemver(t *testing.T) {
	core, _, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		t.Fatalf("Version %q should have three dot-separated parts", Version)
	}
	for _, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 32); err != nil {
			t.Errorf("Version %q has non-numeric part %q", Version, p)
		}
	}
	if EventContractVersion != Version {
		t.Errorf("EventContractVersion %q should track Version %q", EventContractVersion, Version)
	}
}
