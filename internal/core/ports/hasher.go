package ports

import "go.trai.ch/kiln/internal/core/domain"

// Hasher defines the interface for computing hashes.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeInputHash hashes the config fingerprint together with the content of every source.
	ComputeInputHash(cfg *domain.ToolchainConfig, sources []string) (string, error)
}
