// Package toolchain translates extension specs into compiler settings.
package toolchain

import (
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// AcceleratorAPIDefine is defined for CPU units that use accelerator API declarations.
	AcceleratorAPIDefine = "WITH_CUDA"

	abiDefine = "_GLIBCXX_USE_CXX11_ABI"
)

// DefaultAcceleratorArchs are targeted when the environment names none.
var DefaultAcceleratorArchs = []string{"70", "75", "80", "86", "90"}

var archNumber = regexp.MustCompile(`^[0-9]+[a-z]?$`)

// Configurator builds a ToolchainConfig from a spec and an explicit environment.
type Configurator struct{}

// NewConfigurator creates a new Configurator.
func NewConfigurator() *Configurator {
	return &Configurator{}
}

// Configure returns the compiler settings for spec. Identical inputs always
// produce byte-identical output. Missing ambient requirements are reported as
// configuration errors naming the requirement.
func (c *Configurator) Configure(spec domain.ExtensionSpec, env domain.Environment) (*domain.ToolchainConfig, error) {
	env = env.WithDefaults()

	if err := validate(spec, env); err != nil {
		return nil, err
	}

	compiler := env.CXX
	if spec.Kind() == domain.AcceleratorUnit {
		compiler = env.AcceleratorCompiler
	}
	cfg := domain.NewToolchainConfig(spec.Name(), spec.Kind(), compiler, env.Archiver, env.OutDir)

	var err error
	switch spec.Kind() {
	case domain.AcceleratorUnit:
		err = configureAccelerator(cfg, spec, env)
	default:
		err = configureCPU(cfg, spec, env)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to configure toolchain"), "unit", spec.Name())
	}
	return cfg, nil
}

func validate(spec domain.ExtensionSpec, env domain.Environment) error {
	if spec.Kind() == domain.AcceleratorUnit && !spec.UseAcceleratorAPI() {
		return zerr.With(zerr.Wrap(domain.ErrAcceleratorAPIRequired, "accelerator_api must be enabled"), "unit", spec.Name())
	}
	if spec.NeedsAcceleratorRuntime() && env.AcceleratorSDKRoot == "" {
		return missing(domain.ErrAcceleratorSDKMissing, spec, "accelerator_sdk_root")
	}
	if spec.LinkManagedRuntime() {
		if len(env.ManagedRuntime.IncludeDirs) == 0 {
			return missing(domain.ErrManagedRuntimeMissing, spec, "managed_runtime_include")
		}
		if env.ManagedRuntime.Library == "" {
			return missing(domain.ErrManagedRuntimeLibraryMissing, spec, "managed_runtime_library")
		}
	}
	return nil
}

func missing(sentinel error, spec domain.ExtensionSpec, requirement string) error {
	err := zerr.With(zerr.Wrap(sentinel, "missing "+requirement), "requirement", requirement)
	return zerr.With(err, "unit", spec.Name())
}

func configureCPU(cfg *domain.ToolchainConfig, spec domain.ExtensionSpec, env domain.Environment) error {
	flags := []string{"-std=" + env.CXXStandard, "-O2"}
	if !env.IsWindows() {
		flags = append(flags, "-fPIC")
	}
	if err := cfg.AddFlags(flags...); err != nil {
		return err
	}
	if err := addCommon(cfg, env); err != nil {
		return err
	}

	if spec.LinkManagedRuntime() {
		if err := cfg.AddIncludeDirs(env.ManagedRuntime.IncludeDirs...); err != nil {
			return err
		}
	}
	if spec.UseAcceleratorAPI() {
		if err := cfg.AddIncludeDirs(env.AcceleratorIncludeDir()); err != nil {
			return err
		}
		if err := cfg.Define(AcceleratorAPIDefine, ""); err != nil {
			return err
		}
	}
	return nil
}

func configureAccelerator(cfg *domain.ToolchainConfig, spec domain.ExtensionSpec, env domain.Environment) error {
	flags := []string{"-std=" + env.CXXStandard, "-O2"}
	if !env.IsWindows() {
		flags = append(flags, "-Xcompiler", "-fPIC")
	}
	archs := env.AcceleratorArchs
	if len(archs) == 0 {
		archs = DefaultAcceleratorArchs
	}
	codegen, err := CodegenFlags(archs)
	if err != nil {
		return err
	}
	flags = append(flags, codegen...)
	if err := cfg.AddFlags(flags...); err != nil {
		return err
	}
	if err := addCommon(cfg, env); err != nil {
		return err
	}

	if err := cfg.AddIncludeDirs(env.AcceleratorIncludeDir()); err != nil {
		return err
	}
	if spec.LinkManagedRuntime() {
		if err := cfg.AddIncludeDirs(env.ManagedRuntime.IncludeDirs...); err != nil {
			return err
		}
	}
	return nil
}

func addCommon(cfg *domain.ToolchainConfig, env domain.Environment) error {
	if env.CXXABI != "" {
		if err := cfg.Define(abiDefine, env.CXXABI); err != nil {
			return err
		}
	}
	return cfg.AddIncludeDirs(env.ExtraIncludeDirs...)
}

// CodegenFlags renders one -gencode flag per architecture. Architectures may be
// given as "sm_80", "compute_80" or "80"; the result is sorted and de-duplicated.
// Blank entries are skipped and anything else is rejected.
func CodegenFlags(archs []string) ([]string, error) {
	numbers := make([]string, 0, len(archs))
	for _, arch := range archs {
		n := strings.TrimSpace(arch)
		if n == "" {
			continue
		}
		n = strings.TrimPrefix(n, "sm_")
		n = strings.TrimPrefix(n, "compute_")
		if !archNumber.MatchString(n) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidAcceleratorArch, "arch must be NN, sm_NN or compute_NN"), "arch", arch)
		}
		numbers = append(numbers, n)
	}
	slices.SortFunc(numbers, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	numbers = slices.Compact(numbers)

	flags := make([]string, 0, len(numbers))
	for _, n := range numbers {
		flags = append(flags, "-gencode=arch=compute_"+n+",code=sm_"+n)
	}
	return flags, nil
}
