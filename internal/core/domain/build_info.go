package domain

import "time"

// BuildInfo records the inputs and output of a unit's last successful compile.
type BuildInfo struct {
	Unit         string    `json:"unit,omitzero"`
	InputHash    string    `json:"input_hash,omitzero"`
	ArtifactPath string    `json:"artifact_path,omitzero"`
	Objects      []string  `json:"objects,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
}
