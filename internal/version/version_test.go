package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := BuildDate
	t.Cleanup(func() { BuildDate = old })

	BuildDate = ""
	info := Get()
	if info.BuildDate == "" {
		t.Fatal("empty build date should fall back to process start")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}

	BuildDate = "2026-01-02T03:04:05Z"
	if got := Get().BuildDate; got != BuildDate {
		t.Errorf("BuildDate = %q, want %q", got, BuildDate)
	}
}

func TestString(t *testing.T) {
	s := Info{Version: "v1.0.0", Commit: "abc", BuildDate: "now", GoVersion: "go1"}.String()
	if !strings.HasPrefix(s, "startpage v1.0.0 ") || !strings.Contains(s, "commit=abc") {
		t.Errorf("unexpected %q", s)
	}
}
