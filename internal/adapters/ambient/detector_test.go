package ambient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/ambient"
	"go.trai.ch/kiln/internal/core/domain"
)

func lookupFrom(vars map[string]string) ambient.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func noRun(t *testing.T) ambient.RunFunc {
	return func(_ context.Context, name string, _ ...string) ([]byte, error) {
		t.Errorf("unexpected command %q", name)
		return nil, errors.New("unexpected")
	}
}

func exists(paths ...string) func(string) bool {
	return func(path string) bool {
		for _, p := range paths {
			if p == path {
				return true
			}
		}
		return false
	}
}

func TestDetector_Variables(t *testing.T) {
	vars := map[string]string{
		ambient.EnvAcceleratorRoot:  "/opt/cuda-12",
		ambient.EnvCUDAHome:         "/ignored",
		ambient.EnvAcceleratorArchs: "sm_80, 70 sm_90",
		ambient.EnvNVCC:             "/opt/cuda-12/bin/nvcc",
		ambient.EnvCXX:              "clang++",
		ambient.EnvAR:               "llvm-ar",
		ambient.EnvRuntimeInclude:   "/opt/torch/include:/opt/torch/include/api",
		ambient.EnvRuntimeLibDir:    "/opt/torch/lib",
		ambient.EnvRuntimeLib:       "torch_python",
		ambient.EnvExtraInclude:     "/usr/include/eigen3",
		ambient.EnvCXXABI:           "1",
		ambient.EnvTarget:           "x86_64-unknown-linux-gnu",
	}
	d := ambient.NewDetectorWith(lookupFrom(vars), noRun(t), exists())

	env, err := d.Detect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Environment{
		AcceleratorSDKRoot:  "/opt/cuda-12",
		AcceleratorArchs:    []string{"sm_80", "70", "sm_90"},
		AcceleratorCompiler: "/opt/cuda-12/bin/nvcc",
		ManagedRuntime: domain.ManagedRuntime{
			IncludeDirs: []string{"/opt/torch/include", "/opt/torch/include/api"},
			LibDir:      "/opt/torch/lib",
			Library:     "torch_python",
		},
		ExtraIncludeDirs: []string{"/usr/include/eigen3"},
		CXX:              "clang++",
		Archiver:         "llvm-ar",
		CXXABI:           "1",
		TargetTriple:     "x86_64-unknown-linux-gnu",
	}, env)
}

func TestDetector_AcceleratorRootPrecedence(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		dirs []string
		want string
	}{
		{name: "cuda home", vars: map[string]string{ambient.EnvCUDAHome: "/home/cuda", ambient.EnvCUDAPath: "/path/cuda"}, want: "/home/cuda"},
		{name: "cuda path", vars: map[string]string{ambient.EnvCUDAPath: "/path/cuda"}, want: "/path/cuda"},
		{name: "default install", dirs: []string{ambient.DefaultAcceleratorRoot}, want: ambient.DefaultAcceleratorRoot},
		{name: "nothing found", want: ""},
		{name: "blank variable ignored", vars: map[string]string{ambient.EnvAcceleratorRoot: "  "}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{
				ambient.EnvRuntimeInclude: "/inc",
				ambient.EnvRuntimeLibDir:  "/lib",
				ambient.EnvRuntimeLib:     "py",
			}
			for k, v := range tt.vars {
				vars[k] = v
			}
			d := ambient.NewDetectorWith(lookupFrom(vars), noRun(t), exists(tt.dirs...))

			env, err := d.Detect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.AcceleratorSDKRoot)
		})
	}
}

func TestDetector_ManagedRuntimeProbe(t *testing.T) {
	var calls []string
	run := func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, name)
		assert.Equal(t, "-c", args[0])
		return []byte("/usr/include/python3.11\n/usr/lib/x86_64-linux-gnu\npython3.11\n"), nil
	}
	vars := map[string]string{
		ambient.EnvRuntimeLib: "torch_python",
		ambient.EnvPython:     "/venv/bin/python",
	}
	d := ambient.NewDetectorWith(lookupFrom(vars), run, exists())

	env, err := d.Detect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/venv/bin/python"}, calls)
	assert.Equal(t, domain.ManagedRuntime{
		IncludeDirs: []string{"/usr/include/python3.11"},
		LibDir:      "/usr/lib/x86_64-linux-gnu",
		Library:     "torch_python",
	}, env.ManagedRuntime)
}

func TestDetector_ManagedRuntimeProbeFailure(t *testing.T) {
	run := func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, errors.New("exec: \"python3\": executable file not found in $PATH")
	}
	d := ambient.NewDetectorWith(lookupFrom(nil), run, exists())

	env, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ManagedRuntime{}, env.ManagedRuntime)
}

func TestDetector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run := func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, ctx.Err()
	}
	d := ambient.NewDetectorWith(lookupFrom(nil), run, exists())

	_, err := d.Detect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
