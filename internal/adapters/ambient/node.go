package ambient

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the environment detector node.
const NodeID graft.ID = "adapter.ambient"

func init() {
	graft.Register(graft.Node[ports.EnvironmentDetector]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EnvironmentDetector, error) {
			return NewDetector(), nil
		},
	})
}
