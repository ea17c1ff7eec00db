// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Compiler turns a unit's sources into a static artifact.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile freezes cfg, compiles every source and archives the objects.
	//
	// A non-zero compiler or archiver exit is reported as *domain.CompilationError
	// carrying the raw diagnostics. An unreadable source is reported as domain.ErrSourceUnreadable.
	Compile(ctx context.Context, cfg *domain.ToolchainConfig, sources []string) (domain.Artifact, error)
}

// ToolChecker verifies that executables are available before compiling.
type ToolChecker interface {
	// Check returns domain.ErrToolNotFound naming the first missing tool.
	Check(tools ...string) error
}
