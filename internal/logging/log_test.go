package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	tests := []struct {
		name     string
		debug    bool
		fn       func()
		expected string
	}{
		{
			name:     "Print",
			fn:       func() { Print("test print") },
			expected: "test print",
		},
		{
			name:     "Printf",
			fn:       func() { Printf("test printf %d", 123) },
			expected: "test printf 123",
		},
		{
			name:     "Println",
			fn:       func() { Println("test println") },
			expected: "test println",
		},
		{
			name:     "Debugf",
			debug:    true,
			fn:       func() { Debugf("test debugf %s", "foo") },
			expected: "[DEBUG] test debugf foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetDebug(tt.debug)
			buf.Reset()
			tt.fn()
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected log to contain %q, but got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestDebugfDisabled(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	SetDebug(false)
	Debugf("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output with debug off, got %q", buf.String())
	}
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "editor.log")
	closer, err := Setup(Options{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	Printf("written to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	log.SetOutput(os.Stderr)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected log line in file, got %q", data)
	}
}
