package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestResolver_ResolveSources(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"src/nms_cpu.cpp",
		"src/roi_align.cpp",
		"src/kernels/nms.cu",
		"src/kernels/roi.cu",
		"src/kernels/common.h",
		"build/stale.cpp",
	)
	abs := func(rel string) string { return filepath.Join(root, rel) }

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "explicit files keep declaration order",
			patterns: []string{"src/roi_align.cpp", "src/nms_cpu.cpp"},
			want:     []string{abs("src/roi_align.cpp"), abs("src/nms_cpu.cpp")},
		},
		{
			name:     "glob matches are sorted",
			patterns: []string{"src/kernels/*.cu"},
			want:     []string{abs("src/kernels/nms.cu"), abs("src/kernels/roi.cu")},
		},
		{
			name:     "directory expands to sources",
			patterns: []string{"src/kernels"},
			want:     []string{abs("src/kernels/nms.cu"), abs("src/kernels/roi.cu")},
		},
		{
			name:     "duplicates keep first position",
			patterns: []string{"src/kernels/roi.cu", "src/kernels/*.cu"},
			want:     []string{abs("src/kernels/roi.cu"), abs("src/kernels/nms.cu")},
		},
		{
			name:     "absolute pattern ignores root",
			patterns: []string{abs("src/nms_cpu.cpp")},
			want:     []string{abs("src/nms_cpu.cpp")},
		},
		{
			name:     "directory skips ignored output dir",
			patterns: []string{"."},
			want: []string{
				abs("src/kernels/nms.cu"),
				abs("src/kernels/roi.cu"),
				abs("src/nms_cpu.cpp"),
				abs("src/roi_align.cpp"),
			},
		},
	}

	resolver := fs.NewResolver(fs.NewWalker(), "build")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolveSources(tt.patterns, root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ResolveSources_Errors(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "src/nms.cpp", "include/nms.h")
	resolver := fs.NewResolver(fs.NewWalker())

	tests := []struct {
		name     string
		patterns []string
		target   error
	}{
		{name: "missing file", patterns: []string{"src/missing.cpp"}, target: domain.ErrSourceNotFound},
		{name: "glob without matches", patterns: []string{"src/*.cu"}, target: domain.ErrSourceNotFound},
		{name: "directory without sources", patterns: []string{"include"}, target: domain.ErrSourceNotFound},
		{name: "malformed pattern", patterns: []string{"src/[.cpp"}, target: domain.ErrInvalidProject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.ResolveSources(tt.patterns, root)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
