package domain

import "path/filepath"

const (
	// ProjectFileName is the default project definition file.
	ProjectFileName = "kiln.yaml"

	// StateDirName is the directory under the out dir holding kiln metadata.
	StateDirName = ".kiln"

	// StateFileName is the build-info store file inside StateDirName.
	StateFileName = "state.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// StatePath returns the build-info store location for an out dir.
func StatePath(outDir string) string {
	return filepath.Join(outDir, StateDirName, StateFileName)
}
