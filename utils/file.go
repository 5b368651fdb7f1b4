package utils

import (
	"fmt"
	"os"
	"strings"
)

// NormalizeFilename strips any directory component from an uploaded filename,
// whichever separator style produced it. The result is the bare name stored
// in segment metadata; it never contains a path separator.
func NormalizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i != -1 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}

// WriteTempFile writes data to a new temporary file and returns its path.
// The caller owns the file and must remove it on every exit path.
func WriteTempFile(pattern string, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmp.Name(), nil
}
