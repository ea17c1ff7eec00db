package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the project definition.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project file and returns the declared units with absolute sources.
	// path names either the file itself or a directory searched upward for kiln.yaml.
	Load(path string) (*domain.Project, error)
}
