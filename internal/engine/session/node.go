package session

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/cas"
	"go.trai.ch/kiln/internal/adapters/cc"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/adapters/telemetry/progrock"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/toolchain"
)

// NodeID is the unique identifier for the session orchestrator Graft node.
const NodeID graft.ID = "engine.session"

func init() {
	graft.Register(graft.Node[*Orchestrator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			toolchain.NodeID,
			cc.NodeID,
			cc.ToolCheckerNodeID,
			logger.NodeID,
			progrock.NodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			cas.NodeID,
		},
		Run: runOrchestratorNode,
	})
}

func runOrchestratorNode(ctx context.Context) (*Orchestrator, error) {
	configurator, err := graft.Dep[*toolchain.Configurator](ctx)
	if err != nil {
		return nil, err
	}
	compiler, err := graft.Dep[ports.Compiler](ctx)
	if err != nil {
		return nil, err
	}
	tools, err := graft.Dep[ports.ToolChecker](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	verifier, err := graft.Dep[ports.Verifier](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.BuildInfoStore](ctx)
	if err != nil {
		return nil, err
	}

	return NewOrchestrator(configurator, compiler, log, telemetry).
		WithCache(hasher, store, verifier).
		WithToolChecker(tools), nil
}
