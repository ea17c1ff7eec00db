package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes input hashes for the build cache.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(domain.ErrSourceUnreadable, err.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(domain.ErrSourceUnreadable, err.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeInputHash combines the config fingerprint with every source path and
// content hash, in order.
func (h *Hasher) ComputeInputHash(cfg *domain.ToolchainConfig, sources []string) (string, error) {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(cfg.Fingerprint())
	_, _ = hasher.Write([]byte{0})

	for _, src := range sources {
		_, _ = hasher.WriteString(src)
		_, _ = hasher.Write([]byte{0})

		sum, err := h.ComputeFileHash(src)
		if err != nil {
			return "", err
		}
		if err := binary.Write(hasher, binary.LittleEndian, sum); err != nil {
			return "", zerr.Wrap(err, "failed to write hash to digest")
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
