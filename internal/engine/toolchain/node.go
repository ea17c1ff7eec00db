package toolchain

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the toolchain configurator Graft node.
const NodeID graft.ID = "engine.toolchain"

func init() {
	graft.Register(graft.Node[*Configurator]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Configurator, error) {
			return NewConfigurator(), nil
		},
	})
}
