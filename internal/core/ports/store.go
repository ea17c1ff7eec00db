package ports

import "go.trai.ch/kiln/internal/core/domain"

// BuildInfoStore defines the interface for storing and retrieving build information.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get retrieves the build info for a unit under the given out dir.
	// Returns nil, nil if not found.
	Get(outDir, unit string) (*domain.BuildInfo, error)

	// Put stores the build info under the given out dir.
	Put(outDir string, info domain.BuildInfo) error
}
