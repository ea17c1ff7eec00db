package cas_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/core/domain"
)

func sampleInfo(unit string) domain.BuildInfo {
	return domain.BuildInfo{
		Unit:         unit,
		InputHash:    "0123456789abcdef",
		ArtifactPath: filepath.Join("build", unit, domain.ArchiveName(unit)),
		Objects:      []string{filepath.Join("build", unit, "000_"+unit+".o")},
		Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestStore_PutAndGet(t *testing.T) {
	outDir := t.TempDir()
	store := cas.NewStore()

	got, err := store.Get(outDir, "nms_cpu")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Put(outDir, sampleInfo("nms_cpu")))

	got, err = store.Get(outDir, "nms_cpu")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sampleInfo("nms_cpu"), *got)
	assert.FileExists(t, domain.StatePath(outDir))
}

func TestStore_Persistence(t *testing.T) {
	outDir := t.TempDir()

	first := cas.NewStore()
	require.NoError(t, first.Put(outDir, sampleInfo("nms_cpu")))
	require.NoError(t, first.Put(outDir, sampleInfo("nms_cuda")))

	second := cas.NewStore()
	got, err := second.Get(outDir, "nms_cuda")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0123456789abcdef", got.InputHash)

	data, err := os.ReadFile(domain.StatePath(outDir))
	require.NoError(t, err)
	var raw map[string]domain.BuildInfo
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 2)
}

func TestStore_SeparateOutDirs(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	store := cas.NewStore()

	require.NoError(t, store.Put(a, sampleInfo("nms_cpu")))

	got, err := store.Get(b, "nms_cpu")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CorruptFile(t *testing.T) {
	outDir := t.TempDir()
	path := domain.StatePath(outDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := cas.NewStore()
	_, err := store.Get(outDir, "nms_cpu")
	require.Error(t, err)

	require.NoError(t, store.Put(outDir, sampleInfo("nms_cpu")))
	got, err := store.Get(outDir, "nms_cpu")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestStore_EmptyFile(t *testing.T) {
	outDir := t.TempDir()
	path := domain.StatePath(outDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	got, err := cas.NewStore().Get(outDir, "nms_cpu")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_UnwritableOutDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := cas.NewStore().Put(blocker, sampleInfo("nms_cpu"))
	assert.ErrorIs(t, err, domain.ErrOutputUnwritable)
}
