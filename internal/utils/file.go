package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// imageExts are the extensions the editor can load and save.
var imageExts = []string{"jpg", "jpeg", "png", "webp"}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// GetFileExtension returns the file extension without the dot, lower case
func GetFileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsImageFile checks if a file has a supported image extension
func IsImageFile(filename string) bool {
	return slices.Contains(imageExts, GetFileExtension(filename))
}

// OutputFilename builds <dir>/<input base><suffix>[_<tag>].<format>. An empty
// format keeps the input extension.
func OutputFilename(inputFile, outputDir, suffix, tag, format string) string {
	baseName := filepath.Base(inputFile)
	name := strings.TrimSuffix(baseName, filepath.Ext(baseName)) + suffix
	if tag != "" {
		name += "_" + SanitizeFilename(tag)
	}

	if format == "" {
		format = GetFileExtension(inputFile)
		if format == "" {
			format = "jpg"
		}
	}
	return filepath.Join(outputDir, name+"."+strings.ToLower(format))
}

// ListImageFiles returns the image files under dir, recursively, in lexical
// order.
func ListImageFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ExpandInputs turns a mix of files, directories and URLs into a flat list of
// image sources. Directories are expanded with ListImageFiles.
func ExpandInputs(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
			out = append(out, a)
			continue
		}
		if DirExists(a) {
			files, err := ListImageFiles(a)
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", a, err)
			}
			out = append(out, files...)
			continue
		}
		if !FileExists(a) {
			return nil, fmt.Errorf("%s: %w", a, os.ErrNotExist)
		}
		out = append(out, a)
	}
	return out, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFilename turns a label such as "16:9 Widescreen" into a safe file
// name fragment ("16x9_widescreen").
func SanitizeFilename(name string) string {
	r := strings.NewReplacer(":", "x", "/", "_", "\\", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_")
	return strings.Trim(strings.ToLower(r.Replace(name)), "_.")
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
