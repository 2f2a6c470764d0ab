package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriter_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prashna.log")

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prashna.log")

	// 1 MB limit; write two chunks that together exceed it.
	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	chunk := strings.Repeat("x", 700*1024)
	_, err = w.Write([]byte(chunk))
	require.NoError(t, err)
	_, err = w.Write([]byte(chunk))
	require.NoError(t, err)

	// Rotation should have moved the first chunk to prashna.log.1
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(1024*1024))
}

func TestRotatingWriter_PrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prashna.log")

	// Pre-create rotated files at and beyond the retention limit.
	require.NoError(t, os.WriteFile(path+".1", []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(path+".2", []byte("two"), 0o644))

	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	defer w.Close()

	chunk := strings.Repeat("y", 1100*1024)
	_, err = w.Write([]byte(chunk))
	require.NoError(t, err)

	// .2 was at the limit and should have been deleted rather than shifted to .3
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestSetup_CreatesLogger(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Level:    "debug",
		FilePath: filepath.Join(dir, "test.log"),
		MaxSizeMB: 1,
		MaxFiles:  2,
	}

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	defer cleanup()

	logger.Info("test message", "key", "value")

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"test message"`)
	assert.Contains(t, string(data), `"key":"value"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "INFO", parseLevel("bogus").String())
}
