package config

// Kilnfile represents the structure of the kiln.yaml project file.
type Kilnfile struct {
	Version     string          `yaml:"version"`
	OutDir      string          `yaml:"out_dir"`
	Units       []UnitDTO       `yaml:"units"`
	Environment *EnvironmentDTO `yaml:"environment"`
}

// UnitDTO represents one extension unit in the project file.
type UnitDTO struct {
	Name           string   `yaml:"name"`
	Kind           string   `yaml:"kind"`
	Sources        []string `yaml:"sources"`
	AcceleratorAPI bool     `yaml:"accelerator_api"`
	ManagedRuntime bool     `yaml:"managed_runtime"`
}

// EnvironmentDTO holds overrides layered on top of the detected environment.
type EnvironmentDTO struct {
	AcceleratorRoot     string      `yaml:"accelerator_root"`
	AcceleratorArchs    []string    `yaml:"accelerator_archs"`
	AcceleratorCompiler string      `yaml:"accelerator_compiler"`
	AcceleratorRuntime  string      `yaml:"accelerator_runtime"`
	CXX                 string      `yaml:"cxx"`
	Archiver            string      `yaml:"archiver"`
	CXXStandard         string      `yaml:"cxx_standard"`
	CXXABI              string      `yaml:"cxx_abi"`
	Target              string      `yaml:"target"`
	ExtraInclude        []string    `yaml:"extra_include"`
	Runtime             *RuntimeDTO `yaml:"runtime"`
}

// RuntimeDTO locates the managed runtime.
type RuntimeDTO struct {
	Include []string `yaml:"include"`
	LibDir  string   `yaml:"lib_dir"`
	Library string   `yaml:"library"`
}
