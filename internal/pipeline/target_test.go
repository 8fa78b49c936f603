package pipeline

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeProber supports a fixed set of features.
type fakeProber struct {
	supported map[Feature]AdapterInfo
}

func (f *fakeProber) Probe(feature Feature) (AdapterInfo, bool) {
	info, ok := f.supported[feature]
	return info, ok
}

func TestCandidateFeatures(t *testing.T) {
	assert.Equal(t, []Feature{FeatureMetal}, CandidateFeatures("darwin"))
	assert.Equal(t, []Feature{FeatureD3D12, FeatureVulkan, FeatureOpenGL}, CandidateFeatures("windows"))
	assert.Equal(t, []Feature{FeatureVulkan, FeatureOpenGL}, CandidateFeatures("linux"))
}

func TestHostTarget(t *testing.T) {
	host := HostTarget()
	assert.Equal(t, runtime.GOOS, host.OS)
	assert.Equal(t, runtime.GOARCH, host.Arch)
	assert.False(t, host.HasGPUFeature())
}

func TestFindGPUTargetSupported(t *testing.T) {
	candidates := CandidateFeatures(runtime.GOOS)
	prober := &fakeProber{supported: map[Feature]AdapterInfo{
		candidates[0]: {
			Name:   "Fake Adapter",
			Limits: Limits{MaxInvocationsPerWorkgroup: 256},
		},
	}}

	target := FindGPUTarget(prober)
	assert.True(t, target.HasGPUFeature())
	assert.Equal(t, candidates[0], target.Feature)
	assert.Equal(t, "Fake Adapter", target.Adapter)
	assert.Equal(t, uint32(256), target.Limits.MaxInvocationsPerWorkgroup)
}

func TestFindGPUTargetRanking(t *testing.T) {
	// When more than one candidate is supported, the first in the
	// ranked list wins.
	prober := &fakeProber{supported: map[Feature]AdapterInfo{
		FeatureD3D12:  {Name: "first"},
		FeatureVulkan: {Name: "second"},
	}}

	target := findGPUTarget(Target{OS: "windows", Arch: "amd64"}, prober)
	assert.Equal(t, FeatureD3D12, target.Feature)
	assert.Equal(t, "first", target.Adapter)

	target = findGPUTarget(Target{OS: "linux", Arch: "amd64"}, prober)
	assert.Equal(t, FeatureVulkan, target.Feature)
	assert.Equal(t, "second", target.Adapter)
}

func TestFindGPUTargetUnsupported(t *testing.T) {
	target := FindGPUTarget(&fakeProber{})
	assert.False(t, target.HasGPUFeature())
	assert.Equal(t, FeatureNone, target.Feature)
	assert.Empty(t, target.Adapter)
}

func TestFindGPUTargetNilProber(t *testing.T) {
	target := FindGPUTarget(nil)
	assert.False(t, target.HasGPUFeature())
}

func TestTargetString(t *testing.T) {
	target := Target{OS: "linux", Arch: "amd64", Feature: FeatureVulkan, Adapter: "NVIDIA RTX"}
	assert.Equal(t, "linux-amd64-vulkan (NVIDIA RTX)", target.String())

	plain := Target{OS: "linux", Arch: "amd64"}
	assert.Equal(t, "linux-amd64-none", plain.String())
}
