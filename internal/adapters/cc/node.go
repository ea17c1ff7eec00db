package cc

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the compiler driver node.
	NodeID graft.ID = "adapter.compiler"
	// ToolCheckerNodeID is the unique identifier for the tool checker node.
	ToolCheckerNodeID graft.ID = "adapter.toolchecker"
)

func init() {
	graft.Register(graft.Node[ports.Compiler]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Compiler, error) {
			return NewDriver(), nil
		},
	})

	graft.Register(graft.Node[ports.ToolChecker]{
		ID:        ToolCheckerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ToolChecker, error) {
			return NewPathChecker(), nil
		},
	})
}
