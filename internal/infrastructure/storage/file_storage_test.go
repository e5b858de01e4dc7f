package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocalFileStorage_Save(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zaptest.NewLogger(t))

	t.Run("saves file and creates parent directories", func(t *testing.T) {
		err := fs.Save(ctx, filepath.Join("2026", "reporte-a-2026-03-14.pdf"), []byte("%PDF-1.4"))
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(baseDir, "2026", "reporte-a-2026-03-14.pdf"))
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), content)
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, "report.pdf", []byte("original")))
		require.NoError(t, fs.Save(ctx, "report.pdf", []byte("updated")))

		content, err := os.ReadFile(filepath.Join(baseDir, "report.pdf"))
		require.NoError(t, err)
		assert.Equal(t, []byte("updated"), content)
	})

	t.Run("leaves no temporary files behind", func(t *testing.T) {
		require.NoError(t, fs.Save(ctx, filepath.Join("clean", "report.pdf"), []byte("x")))

		entries, err := os.ReadDir(filepath.Join(baseDir, "clean"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "report.pdf", entries[0].Name())
	})
}

func TestLocalFileStorage_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	fs := NewLocalFileStorage(t.TempDir(), zaptest.NewLogger(t))

	for _, path := range []string{"../outside.pdf", "a/../../outside.pdf", "/etc/passwd", "", "."} {
		t.Run(path, func(t *testing.T) {
			err := fs.Save(ctx, path, []byte("x"))
			assert.ErrorIs(t, err, ErrPathEscapesBase)
		})
	}
}

func TestLocalFileStorage_SaveHonoursCancelledContext(t *testing.T) {
	baseDir := t.TempDir()
	fs := NewLocalFileStorage(baseDir, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, fs.Save(ctx, "report.xlsx", []byte("PK")), context.Canceled)
	_, err := os.Stat(filepath.Join(baseDir, "report.xlsx"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalFileStorage_GetFullPath(t *testing.T) {
	fs := NewLocalFileStorage("/var/reports", zaptest.NewLogger(t))
	assert.Equal(t, filepath.Join("/var/reports", "a.pdf"), fs.GetFullPath("a.pdf"))
}
