package logfields

import (
	"fmt"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "abc", RunID("abc")},
		{"Dependency", KeyDependency, "xvfb", Dependency("xvfb")},
		{"Service", KeyService, "pilot-kneeboard", Service("pilot-kneeboard")},
		{"Output", KeyOutput, "DSI-1", Output("DSI-1")},
		{"Path", KeyPath, "/opt/pilot_kneeboard", Path("/opt/pilot_kneeboard")},
		{"Command", KeyCommand, "xrandr", Command("xrandr")},
		{"State", KeyState, "running", State("running")},
		{"Status", KeyStatus, "active", Status("active")},
		{"Archive", KeyArchive, "pilot_kneeboard_1.0.0.zip", Archive("pilot_kneeboard_1.0.0.zip")},
		{"User", KeyUser, "pi", User("pi")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("nil error should produce empty value, got %q", got)
	}
	if got := Error(fmt.Errorf("boom")).Value.String(); got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}
