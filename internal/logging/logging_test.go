package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{"", log.InfoLevel},
		{"chatty", log.InfoLevel},
	}
	for _, tc := range tests {
		if got := New(&bytes.Buffer{}, tc.in, "catch").GetLevel(); got != tc.want {
			t.Errorf("New(%q) level = %v, expected %v", tc.in, got, tc.want)
		}
	}
}

func TestNewWritesPrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "catch").Info("profile created", "id", "p1")

	out := buf.String()
	for _, want := range []string{"catch", "profile created", "id=p1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q is missing %q", out, want)
		}
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "catch.log")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()

	New(f, "info", "catch").Info("hello")
}
