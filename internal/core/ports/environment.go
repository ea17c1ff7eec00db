package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// EnvironmentDetector gathers the ambient environment from the host.
//
// It is the only component that reads process state; everything downstream
// receives the result as a plain domain.Environment value.
//
//go:generate go run go.uber.org/mock/mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentDetector interface {
	// Detect probes the host. Missing entries are left empty rather than reported;
	// configuration decides which of them are required.
	Detect(ctx context.Context) (domain.Environment, error)
}
