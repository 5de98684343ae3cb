package utils

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o600))

	r, err := OpenInput(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestOpenInputMissing(t *testing.T) {
	_, err := OpenInput(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenInputStdin(t *testing.T) {
	for _, path := range []string{"", "-"} {
		r, err := OpenInput(path)
		require.NoError(t, err)
		require.NoError(t, r.Close())
	}
}

func TestCreateOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := CreateOutput(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("x\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
}

func TestCreateOutputTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old old old\n"), 0o600))

	w, err := CreateOutput(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(data))
}

func TestCreateOutputStdout(t *testing.T) {
	w, err := CreateOutput("-")
	require.NoError(t, err)
	// Closing the wrapper must never close the real stdout.
	require.NoError(t, w.Close())
}
