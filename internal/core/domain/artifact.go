package domain

import "path/filepath"

// Artifact is the static archive produced for one unit.
type Artifact struct {
	Unit    string   `json:"unit"`
	Library string   `json:"library"`
	Path    string   `json:"path"`
	Dir     string   `json:"dir"`
	Objects []string `json:"objects,omitempty"`
	Cached  bool     `json:"cached,omitempty"`
}

// ArchiveName returns the platform-neutral static archive file name for a unit.
func ArchiveName(unit string) string {
	return "lib" + unit + ".a"
}

// UnitDir returns the directory holding a unit's objects and archive.
func UnitDir(outDir, unit string) string {
	return filepath.Join(outDir, unit)
}

// Directive returns the link directive consuming this artifact.
func (a Artifact) Directive() LinkDirective {
	return LinkDirective{
		Library:    a.Library,
		SearchPath: a.Dir,
		Kind:       LinkStatic,
		Condition:  ConditionCompiledArtifact,
	}
}
