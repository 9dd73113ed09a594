package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "dir/c.png", "d.webp"} {
		if !IsImageFile(name) {
			t.Errorf("Expected %s to be an image file", name)
		}
	}
	for _, name := range []string{"a.gif", "notes.txt", "noext"} {
		if IsImageFile(name) {
			t.Errorf("Expected %s not to be an image file", name)
		}
	}
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		input, dir, suffix, tag, format string
		want                            string
	}{
		{"/in/photo.png", "out", "_edited", "", "", filepath.Join("out", "photo_edited.png")},
		{"photo.jpeg", "out", "_crop", "16:9 Widescreen", "webp", filepath.Join("out", "photo_crop_16x9_widescreen.webp")},
		{"noext", "", "", "", "", "noext.jpg"},
		{"a.png", "o", "", "", "JPG", filepath.Join("o", "a.jpg")},
	}
	for _, tt := range tests {
		got := OutputFilename(tt.input, tt.dir, tt.suffix, tt.tag, tt.format)
		if got != tt.want {
			t.Errorf("OutputFilename(%q, %q, %q, %q, %q) = %q, expected %q", tt.input, tt.dir, tt.suffix, tt.tag, tt.format, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"16:9 Widescreen": "16x9_widescreen",
		"a/b\\c":          "a_b_c",
		" .hidden. ":      "hidden",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestListAndExpandInputs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := EnsureDir(sub); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.png", "a.jpg", "skip.txt", filepath.Join("sub", "c.webp")} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListImageFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png"), filepath.Join(sub, "c.webp")}
	if len(files) != len(want) {
		t.Fatalf("Expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, files[i])
		}
	}

	inputs, err := ExpandInputs([]string{"https://example.com/x.jpg", dir, filepath.Join(dir, "skip.txt")})
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 5 {
		t.Errorf("Expected 5 inputs, got %v", inputs)
	}

	_, err = ExpandInputs([]string{filepath.Join(dir, "missing.png")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.png")
	os.WriteFile(file, nil, 0644)

	if !FileExists(file) || FileExists(dir) {
		t.Error("FileExists should only accept regular files")
	}
	if !DirExists(dir) || DirExists(file) {
		t.Error("DirExists should only accept directories")
	}
	if FileExists(filepath.Join(dir, "nope")) || DirExists(filepath.Join(dir, "nope")) {
		t.Error("Missing paths should not exist")
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for size, want := range tests {
		if got := FormatFileSize(size); got != want {
			t.Errorf("FormatFileSize(%d) = %q, expected %q", size, got, want)
		}
	}
}
