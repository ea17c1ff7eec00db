package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, r)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(r), 0o600))
	}
}

func TestWalker_WalkSources(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"nms.cpp",
		"kernels/nms.cu",
		"kernels/nms.h",
		"README.md",
		".git/hooks/pre.cpp",
		".kiln/cache.cpp",
		"build/generated.cpp",
		"vendor/lib.CC",
	)

	got := slices.Collect(fs.NewWalker().WalkSources(root, []string{"build"}))

	assert.Equal(t, []string{
		filepath.Join(root, "kernels", "nms.cu"),
		filepath.Join(root, "nms.cpp"),
		filepath.Join(root, "vendor", "lib.CC"),
	}, got)
}

func TestWalker_WalkSources_StopsEarly(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.cpp", "b.cpp", "c.cpp")

	var got []string
	for path := range fs.NewWalker().WalkSources(root, nil) {
		got = append(got, path)
		if len(got) == 2 {
			break
		}
	}
	assert.Len(t, got, 2)
}

func TestVerifier_VerifyOutputs(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "libnms.a", "000_nms.o")
	v := fs.NewVerifier()

	ok, err := v.VerifyOutputs([]string{filepath.Join(root, "libnms.a"), filepath.Join(root, "000_nms.o")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.VerifyOutputs([]string{filepath.Join(root, "libnms.a"), filepath.Join(root, "gone.o")})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.VerifyOutputs(nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
