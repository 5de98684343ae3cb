// =============================================================================
// FOLIO Batch - File Utilities
// =============================================================================
//
// Small helpers for opening the batch input and audit output with
// stdin/stdout defaults, so every command handles "-i"/"-o" the same way.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
)

// Stdio is the path value (empty or "-") selecting a standard stream.
func isStdio(path string) bool {
	return path == "" || path == "-"
}

// OpenInput opens the input file for reading, or returns stdin when path is
// empty or "-". The returned closer is a no-op for stdin.
func OpenInput(path string) (io.ReadCloser, error) {
	if isStdio(path) {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, nil
}

// CreateOutput opens the output file for writing, truncating an existing
// file, or returns stdout when path is empty or "-". Closing the returned
// writer never closes stdout.
func CreateOutput(path string) (io.WriteCloser, error) {
	if isStdio(path) {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
