package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func newConfig(t *testing.T, flags ...string) *domain.ToolchainConfig {
	t.Helper()
	cfg := domain.NewToolchainConfig("nms_cpu", domain.CpuUnit, "c++", "ar", "build")
	require.NoError(t, cfg.AddFlags(flags...))
	return cfg
}

func TestHasher_ComputeInputHash(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.cpp", "b.cpp")
	a := filepath.Join(root, "a.cpp")
	b := filepath.Join(root, "b.cpp")
	h := fs.NewHasher()

	base, err := h.ComputeInputHash(newConfig(t, "-O2"), []string{a, b})
	require.NoError(t, err)
	assert.Len(t, base, 16)

	t.Run("stable", func(t *testing.T) {
		again, err := h.ComputeInputHash(newConfig(t, "-O2"), []string{a, b})
		require.NoError(t, err)
		assert.Equal(t, base, again)
	})

	t.Run("flags change the hash", func(t *testing.T) {
		other, err := h.ComputeInputHash(newConfig(t, "-O3"), []string{a, b})
		require.NoError(t, err)
		assert.NotEqual(t, base, other)
	})

	t.Run("source order changes the hash", func(t *testing.T) {
		other, err := h.ComputeInputHash(newConfig(t, "-O2"), []string{b, a})
		require.NoError(t, err)
		assert.NotEqual(t, base, other)
	})

	t.Run("content changes the hash", func(t *testing.T) {
		dir := t.TempDir()
		c := filepath.Join(dir, "a.cpp")
		require.NoError(t, os.WriteFile(c, []byte("v1"), 0o600))
		first, err := h.ComputeInputHash(newConfig(t), []string{c})
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(c, []byte("v2"), 0o600))
		second, err := h.ComputeInputHash(newConfig(t), []string{c})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestHasher_ComputeInputHash_MissingSource(t *testing.T) {
	_, err := fs.NewHasher().ComputeInputHash(newConfig(t), []string{filepath.Join(t.TempDir(), "gone.cpp")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnreadable)
}

func TestHasher_ComputeFileHash_MissingFileReportsPath(t *testing.T) {
	gone := filepath.Join(t.TempDir(), "gone.cpp")
	_, err := fs.NewHasher().ComputeFileHash(gone)
	require.Error(t, err)
	assert.True(t, domain.IsIOError(err))

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, gone, zErr.Metadata()["path"])
}

func TestHasher_ComputeFileHash(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "x.cpp")
	h := fs.NewHasher()

	first, err := h.ComputeFileHash(filepath.Join(root, "x.cpp"))
	require.NoError(t, err)
	second, err := h.ComputeFileHash(filepath.Join(root, "x.cpp"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
