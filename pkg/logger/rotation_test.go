package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNewRotationWriter(t *testing.T) {
	dir := t.TempDir()

	t.Run("size", func(t *testing.T) {
		cfg := DefaultConfig().Rotation
		w, err := NewRotationWriter(&cfg, filepath.Join(dir, "size.log"))
		require.NoError(t, err)
		lj, ok := w.(*lumberjack.Logger)
		require.True(t, ok)
		assert.Equal(t, 100, lj.MaxSize)
	})

	t.Run("time", func(t *testing.T) {
		cfg := DefaultConfig().Rotation
		cfg.Type = RotationByTime
		cfg.RotationTime = "1h"
		w, err := NewRotationWriter(&cfg, filepath.Join(dir, "time.log"))
		require.NoError(t, err)
		_, err = w.Write([]byte("hello\n"))
		require.NoError(t, err)
	})
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drone.log")
	l, err := New(&Config{
		Format:     JSONFormat,
		EnableFile: true,
		OutputPath: path,
	})
	require.NoError(t, err)

	l.Info("written to file", "agent", 1)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
