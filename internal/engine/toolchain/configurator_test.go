package toolchain_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

func fullEnv() domain.Environment {
	return domain.Environment{
		AcceleratorSDKRoot: "/usr/local/cuda",
		AcceleratorArchs:   []string{"sm_80", "70"},
		ManagedRuntime: domain.ManagedRuntime{
			IncludeDirs: []string{"/py/include"},
			LibDir:      "/py/lib",
			Library:     "python3.11",
		},
		ExtraIncludeDirs: []string{"/torch/include"},
		CXXABI:           "1",
		TargetTriple:     "x86_64-unknown-linux-gnu",
		OutDir:           "/out",
	}
}

func mustSpec(t *testing.T, name string, kind domain.UnitKind, api, runtime bool) domain.ExtensionSpec {
	t.Helper()
	spec, err := domain.NewExtensionSpec(name, kind, []string{name + ".src"},
		domain.WithAcceleratorAPI(api),
		domain.WithManagedRuntime(runtime),
	)
	require.NoError(t, err)
	return spec
}

func TestConfigure_CpuUnit(t *testing.T) {
	c := toolchain.NewConfigurator()
	cudaInclude := filepath.Join("/usr/local/cuda", "include")

	tests := []struct {
		name     string
		api      bool
		runtime  bool
		includes []string
		defines  []domain.Define
	}{
		{
			name:     "plain",
			includes: []string{"/torch/include"},
			defines:  []domain.Define{{Name: "_GLIBCXX_USE_CXX11_ABI", Value: "1"}},
		},
		{
			name:     "managed runtime",
			runtime:  true,
			includes: []string{"/torch/include", "/py/include"},
			defines:  []domain.Define{{Name: "_GLIBCXX_USE_CXX11_ABI", Value: "1"}},
		},
		{
			name:     "accelerator api",
			api:      true,
			includes: []string{"/torch/include", cudaInclude},
			defines: []domain.Define{
				{Name: "_GLIBCXX_USE_CXX11_ABI", Value: "1"},
				{Name: toolchain.AcceleratorAPIDefine},
			},
		},
		{
			name:     "both",
			api:      true,
			runtime:  true,
			includes: []string{"/torch/include", "/py/include", cudaInclude},
			defines: []domain.Define{
				{Name: "_GLIBCXX_USE_CXX11_ABI", Value: "1"},
				{Name: toolchain.AcceleratorAPIDefine},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := c.Configure(mustSpec(t, "nms_cpu", domain.CpuUnit, tt.api, tt.runtime), fullEnv())
			require.NoError(t, err)

			assert.Equal(t, domain.DefaultCXX, cfg.Compiler())
			assert.Equal(t, domain.DefaultArchiver, cfg.Archiver())
			assert.Equal(t, "/out", cfg.OutDir())
			assert.Equal(t, []string{"-std=c++17", "-O2", "-fPIC"}, cfg.Flags())
			assert.Equal(t, tt.includes, cfg.IncludeDirs())
			assert.Equal(t, tt.defines, cfg.Defines())
			for _, f := range cfg.Flags() {
				assert.NotContains(t, f, "-gencode")
			}
		})
	}
}

func TestConfigure_AcceleratorUnit(t *testing.T) {
	c := toolchain.NewConfigurator()

	cfg, err := c.Configure(mustSpec(t, "nms_cuda", domain.AcceleratorUnit, true, false), fullEnv())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/usr/local/cuda", "bin", "nvcc"), cfg.Compiler())
	assert.Equal(t, []string{
		"-std=c++17", "-O2", "-Xcompiler", "-fPIC",
		"-gencode=arch=compute_70,code=sm_70",
		"-gencode=arch=compute_80,code=sm_80",
	}, cfg.Flags())
	assert.Equal(t, []string{"/torch/include", filepath.Join("/usr/local/cuda", "include")}, cfg.IncludeDirs())

	withRuntime, err := c.Configure(mustSpec(t, "nms_cuda", domain.AcceleratorUnit, true, true), fullEnv())
	require.NoError(t, err)
	assert.Contains(t, withRuntime.IncludeDirs(), "/py/include")
}

func TestConfigure_WindowsOmitsPIC(t *testing.T) {
	env := fullEnv()
	env.TargetTriple = "x86_64-pc-windows-msvc"

	cfg, err := toolchain.NewConfigurator().Configure(mustSpec(t, "nms_cpu", domain.CpuUnit, false, false), env)
	require.NoError(t, err)
	assert.NotContains(t, cfg.Flags(), "-fPIC")
}

func TestConfigure_Deterministic(t *testing.T) {
	c := toolchain.NewConfigurator()
	specs := []domain.ExtensionSpec{
		mustSpec(t, "nms_cpu", domain.CpuUnit, true, true),
		mustSpec(t, "nms_cuda", domain.AcceleratorUnit, true, true),
	}

	for _, spec := range specs {
		t.Run(spec.Name(), func(t *testing.T) {
			first, err := c.Configure(spec, fullEnv())
			require.NoError(t, err)

			for range 10 {
				env := fullEnv()
				// Arch order is not significant.
				env.AcceleratorArchs = []string{"70", "sm_80", "sm_70"}
				again, err := c.Configure(spec, env)
				require.NoError(t, err)
				assert.Equal(t, first.Args("x.src", "x.o"), again.Args("x.src", "x.o"))
				assert.Equal(t, first.Fingerprint(), again.Fingerprint())
			}
		})
	}
}

func TestConfigure_MissingRequirements(t *testing.T) {
	tests := []struct {
		name        string
		spec        func(t *testing.T) domain.ExtensionSpec
		mutate      func(env *domain.Environment)
		sentinel    error
		requirement string
	}{
		{
			name:        "cpu unit with accelerator api and no sdk",
			spec:        func(t *testing.T) domain.ExtensionSpec { return mustSpec(t, "u", domain.CpuUnit, true, false) },
			mutate:      func(env *domain.Environment) { env.AcceleratorSDKRoot = "" },
			sentinel:    domain.ErrAcceleratorSDKMissing,
			requirement: "accelerator_sdk_root",
		},
		{
			name:        "accelerator unit with no sdk",
			spec:        func(t *testing.T) domain.ExtensionSpec { return mustSpec(t, "u", domain.AcceleratorUnit, true, false) },
			mutate:      func(env *domain.Environment) { env.AcceleratorSDKRoot = "" },
			sentinel:    domain.ErrAcceleratorSDKMissing,
			requirement: "accelerator_sdk_root",
		},
		{
			name:        "managed runtime headers missing",
			spec:        func(t *testing.T) domain.ExtensionSpec { return mustSpec(t, "u", domain.CpuUnit, false, true) },
			mutate:      func(env *domain.Environment) { env.ManagedRuntime.IncludeDirs = nil },
			sentinel:    domain.ErrManagedRuntimeMissing,
			requirement: "managed_runtime_include",
		},
		{
			name:        "managed runtime library missing",
			spec:        func(t *testing.T) domain.ExtensionSpec { return mustSpec(t, "u", domain.CpuUnit, false, true) },
			mutate:      func(env *domain.Environment) { env.ManagedRuntime.Library = "" },
			sentinel:    domain.ErrManagedRuntimeLibraryMissing,
			requirement: "managed_runtime_library",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := fullEnv()
			tt.mutate(&env)

			cfg, err := toolchain.NewConfigurator().Configure(tt.spec(t), env)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, domain.IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.requirement)

			var zErr *zerr.Error
			require.True(t, errors.As(err, &zErr))
			assert.Equal(t, tt.requirement, zErr.Metadata()["requirement"])
			assert.Equal(t, "u", zErr.Metadata()["unit"])
		})
	}
}

func TestConfigure_NoSDKNeededWithoutAccelerator(t *testing.T) {
	env := fullEnv()
	env.AcceleratorSDKRoot = ""

	_, err := toolchain.NewConfigurator().Configure(mustSpec(t, "u", domain.CpuUnit, false, true), env)
	assert.NoError(t, err)
}

func TestConfigure_AcceleratorUnitWithoutAPIIsRejected(t *testing.T) {
	_, err := toolchain.NewConfigurator().Configure(mustSpec(t, "nms_cuda", domain.AcceleratorUnit, false, false), fullEnv())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAcceleratorAPIRequired)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestCodegenFlags(t *testing.T) {
	flags, err := toolchain.CodegenFlags([]string{"sm_100", "compute_90", " 75 ", "sm_90", "", "sm_90a"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-gencode=arch=compute_75,code=sm_75",
		"-gencode=arch=compute_90,code=sm_90",
		"-gencode=arch=compute_100,code=sm_100",
		"-gencode=arch=compute_90a,code=sm_90a",
	}, flags)

	none, err := toolchain.CodegenFlags(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCodegenFlags_RejectsMalformedArch(t *testing.T) {
	for _, arch := range []string{"8.6", "sm_86+PTX", "8.6+PTX", "sm_", "ampere", "86A"} {
		t.Run(arch, func(t *testing.T) {
			flags, err := toolchain.CodegenFlags([]string{"80", arch})
			require.Error(t, err)
			assert.Nil(t, flags)
			assert.ErrorIs(t, err, domain.ErrInvalidAcceleratorArch)
			assert.True(t, domain.IsConfigurationError(err))

			var zErr *zerr.Error
			require.True(t, errors.As(err, &zErr))
			assert.Equal(t, arch, zErr.Metadata()["arch"])
		})
	}
}

func TestConfigure_AcceleratorUnitDefaultArchs(t *testing.T) {
	env := fullEnv()
	env.AcceleratorArchs = nil

	cfg, err := toolchain.NewConfigurator().Configure(mustSpec(t, "nms_cuda", domain.AcceleratorUnit, true, false), env)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-std=c++17", "-O2", "-Xcompiler", "-fPIC",
		"-gencode=arch=compute_70,code=sm_70",
		"-gencode=arch=compute_75,code=sm_75",
		"-gencode=arch=compute_80,code=sm_80",
		"-gencode=arch=compute_86,code=sm_86",
		"-gencode=arch=compute_90,code=sm_90",
	}, cfg.Flags())
}

func TestConfigure_AcceleratorUnitMalformedArch(t *testing.T) {
	env := fullEnv()
	env.AcceleratorArchs = []string{"8.6"}

	cfg, err := toolchain.NewConfigurator().Configure(mustSpec(t, "nms_cuda", domain.AcceleratorUnit, true, false), env)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidAcceleratorArch)
	assert.True(t, domain.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "invalid accelerator arch")
}

func TestConfigure_CpuUnitIgnoresArchs(t *testing.T) {
	env := fullEnv()
	env.AcceleratorArchs = []string{"8.6"}

	_, err := toolchain.NewConfigurator().Configure(mustSpec(t, "nms_cpu", domain.CpuUnit, true, false), env)
	assert.NoError(t, err)
}
