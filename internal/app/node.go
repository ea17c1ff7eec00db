package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/ambient" //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/adapters/watch"   //nolint:depguard // Wired in app layer
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/session"
	"go.trai.ch/kiln/internal/engine/toolchain"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			ambient.NodeID,
			session.NodeID,
			toolchain.NodeID,
			watch.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	detector, err := graft.Dep[ports.EnvironmentDetector](ctx)
	if err != nil {
		return nil, err
	}
	orchestrator, err := graft.Dep[*session.Orchestrator](ctx)
	if err != nil {
		return nil, err
	}
	configurator, err := graft.Dep[*toolchain.Configurator](ctx)
	if err != nil {
		return nil, err
	}
	watcher, err := graft.Dep[ports.SourceWatcher](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, detector, orchestrator, configurator, watcher, log), nil
}
