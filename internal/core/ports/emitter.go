package ports

import (
	"io"

	"go.trai.ch/kiln/internal/core/domain"
)

// Emitter renders a flushed session for the enclosing build system.
//
//go:generate go run go.uber.org/mock/mockgen -source=emitter.go -destination=mocks/mock_emitter.go -package=mocks
type Emitter interface {
	// Emit writes out to w in a single write call.
	Emit(w io.Writer, out domain.SessionOutput) error
}
