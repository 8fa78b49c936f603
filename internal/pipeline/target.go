package pipeline

import (
	"fmt"
	"runtime"
	"strings"
)

// Feature identifies a GPU backend API the host may support.
type Feature int

// Supported GPU backend features. FeatureNone marks a plain host target.
const (
	FeatureNone Feature = iota
	FeatureMetal
	FeatureVulkan
	FeatureD3D12
	FeatureOpenGL
)

// String returns a human-readable feature name.
func (f Feature) String() string {
	switch f {
	case FeatureNone:
		return "none"
	case FeatureMetal:
		return "metal"
	case FeatureVulkan:
		return "vulkan"
	case FeatureD3D12:
		return "d3d12"
	case FeatureOpenGL:
		return "opengl"
	default:
		return "unknown"
	}
}

// Limits describes the compute dispatch limits of a target's device.
type Limits struct {
	MaxInvocationsPerWorkgroup uint32
	MaxWorkgroupSizeX          uint32
	MaxWorkgroupSizeY          uint32
	MaxWorkgroupSizeZ          uint32
	MaxWorkgroupsPerDimension  uint32
}

// Target describes the host/GPU combination a pipeline is compiled for.
// Selected once, immutable thereafter.
type Target struct {
	OS      string
	Arch    string
	Feature Feature
	Adapter string // adapter/device name, empty for plain host targets
	Limits  Limits
}

// HasGPUFeature reports whether the target carries a GPU backend feature.
func (t Target) HasGPUFeature() bool { return t.Feature != FeatureNone }

// String returns a target triple such as "linux-amd64-vulkan (NVIDIA ...)".
func (t Target) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s-%s-%s", t.OS, t.Arch, t.Feature)
	if t.Adapter != "" {
		fmt.Fprintf(&b, " (%s)", t.Adapter)
	}
	return b.String()
}

// AdapterInfo describes a probed GPU adapter.
type AdapterInfo struct {
	Name   string
	Limits Limits
}

// Prober answers host capability queries for candidate GPU features.
// Engines that can drive a GPU implement this.
type Prober interface {
	// Probe reports whether the host supports the candidate feature and,
	// if so, describes the adapter that would serve it.
	Probe(f Feature) (AdapterInfo, bool)
}

// HostTarget returns the plain host target with no GPU feature.
func HostTarget() Target {
	return Target{OS: runtime.GOOS, Arch: runtime.GOARCH, Feature: FeatureNone}
}

// CandidateFeatures returns the ranked GPU features worth probing on the
// given OS. The order is configuration, not control flow: Metal is the
// only dependable API on Apple hosts, D3D12 is preferred on Windows, and
// Vulkan elsewhere, with OpenGL as the portable fallback.
func CandidateFeatures(goos string) []Feature {
	switch goos {
	case "darwin":
		return []Feature{FeatureMetal}
	case "windows":
		return []Feature{FeatureD3D12, FeatureVulkan, FeatureOpenGL}
	default:
		return []Feature{FeatureVulkan, FeatureOpenGL}
	}
}

// FindGPUTarget probes the ranked candidate features and returns the
// first target the host supports. If none is supported it returns the
// plain host target; callers must check HasGPUFeature before scheduling.
func FindGPUTarget(p Prober) Target {
	return findGPUTarget(HostTarget(), p)
}

func findGPUTarget(host Target, p Prober) Target {
	if p == nil {
		return host
	}
	for _, f := range CandidateFeatures(host.OS) {
		if info, ok := p.Probe(f); ok {
			host.Feature = f
			host.Adapter = info.Name
			host.Limits = info.Limits
			return host
		}
	}
	return host
}
