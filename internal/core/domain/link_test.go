package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestMergeDirectives(t *testing.T) {
	managed := domain.LinkDirective{Library: "python3", Kind: domain.LinkDynamic, Condition: domain.ConditionManagedRuntime}
	accelAPI := domain.LinkDirective{
		Library: "cudart", SearchPath: "/cuda/lib64", Kind: domain.LinkDynamic, Condition: domain.ConditionAcceleratorAPI,
	}
	accelUnit := accelAPI
	accelUnit.Condition = domain.ConditionAcceleratorUnit
	cpuLib := domain.LinkDirective{Library: "nms_cpu", SearchPath: "/out/nms_cpu", Kind: domain.LinkStatic}
	cudaLib := domain.LinkDirective{Library: "nms_cuda", SearchPath: "/out/nms_cuda", Kind: domain.LinkStatic}

	merged := domain.MergeDirectives(
		[]domain.LinkDirective{managed, accelAPI, cpuLib},
		[]domain.LinkDirective{accelUnit, cudaLib},
	)

	assert.Equal(t, []domain.LinkDirective{managed, accelAPI, cpuLib, cudaLib}, merged)
	assert.Equal(t, []string{"/cuda/lib64", "/out/nms_cpu", "/out/nms_cuda"}, domain.SearchPaths(merged))
}

func TestMergeDirectives_Empty(t *testing.T) {
	assert.Empty(t, domain.MergeDirectives())
	assert.Empty(t, domain.SearchPaths(nil))
}

func TestArtifact_Directive(t *testing.T) {
	a := domain.Artifact{Unit: "nms_cpu", Library: "nms_cpu", Dir: "/out/nms_cpu", Path: "/out/nms_cpu/libnms_cpu.a"}
	assert.Equal(t, domain.LinkDirective{
		Library:    "nms_cpu",
		SearchPath: "/out/nms_cpu",
		Kind:       domain.LinkStatic,
		Condition:  domain.ConditionCompiledArtifact,
	}, a.Directive())
	assert.Equal(t, "libnms_cpu.a", domain.ArchiveName("nms_cpu"))
}
