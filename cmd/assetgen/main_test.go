package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Both assets are written and reported
func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var out bytes.Buffer

	if err := generate(dir, 8000, &out); err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, name := range []string{"event.wav", "music.wav"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s missing: %v", name, err)
			continue
		}
		if info.Size() <= 44 {
			t.Errorf("%s has no samples (%d bytes)", name, info.Size())
		}
		if !strings.Contains(out.String(), name) {
			t.Errorf("output %q does not mention %s", out.String(), name)
		}
	}
}
