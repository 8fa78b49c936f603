package webgpu

import (
	"fmt"
	"strings"

	"github.com/tessel-ml/tessel/internal/pipeline"
)

// stageWorkgroupSize is the thread count per workgroup for per-stage
// (root) shaders.
const stageWorkgroupSize = 256

// scaleLiteral formats a float32 as a WGSL literal.
func scaleLiteral(v float32) string {
	return fmt.Sprintf("%.9e", v)
}

// fusedShaderWGSL emits the fused two-stage stencil shader. All extents
// and strides are baked into the source at compile time; the invocation
// grid covers (fused batch*channel, x, y) with the producer computed
// inline per output element.
func fusedShaderWGSL(p *pipeline.Pipeline, tileW, tileH int) string {
	producer := p.Stages()[0]
	consumer := p.Stages()[1]
	input := p.Input()

	shape := p.OutputShape()
	istr := input.Strides()
	ostr := shape.ComputeStrides()
	scale := producer.Scale() * consumer.Scale()

	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read_write> dst: array<f32>;

@compute @workgroup_size(%d, %d, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let f = gid.x;
    let x = gid.y;
    let y = gid.z;
    if (f >= %du || x >= %du || y >= %du) {
        return;
    }
    let n = f / %du;
    let c = f %% %du;
    let base = n * %du + c * %du + x * %du + y * %du;
    var sum: f32 = 0.0;
    for (var j: u32 = 0u; j < %du; j = j + 1u) {
        for (var i: u32 = 0u; i < %du; i = i + 1u) {
            sum = sum + src[base + j * %du + i * %du];
        }
    }
    dst[f * %du + x * %du + y * %du] = sum * %s;
}
`,
		tileW, tileH,
		shape[0]*shape[1], shape[2], shape[3],
		shape[1], shape[1],
		istr[0], istr[1], istr[2], istr[3],
		consumer.Taps(), producer.Taps(),
		istr[consumer.Along()], istr[producer.Along()],
		ostr[1], ostr[2], ostr[3],
		scaleLiteral(scale))
}

// stageShaderWGSL emits the shader for stage i executed root-level: a 1D
// grid over the stage's output elements, each decomposing its flat index
// into source coordinates through baked strides.
func stageShaderWGSL(p *pipeline.Pipeline, i int) string {
	stage := p.Stages()[i]

	dstShape := p.StageShape(i)
	dstStrides := dstShape.ComputeStrides()

	srcShape := p.Input().Shape()
	if i > 0 {
		srcShape = p.StageShape(i - 1)
	}
	srcStrides := srcShape.ComputeStrides()

	var decompose strings.Builder
	for d := range dstShape {
		if d == len(dstShape)-1 {
			fmt.Fprintf(&decompose, "    base = base + rem * %du;\n", srcStrides[d])
			continue
		}
		fmt.Fprintf(&decompose, "    base = base + (rem / %du) * %du;\n", dstStrides[d], srcStrides[d])
		fmt.Fprintf(&decompose, "    rem = rem %% %du;\n", dstStrides[d])
	}

	return fmt.Sprintf(`
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read_write> dst: array<f32>;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let idx = gid.x;
    if (idx >= %du) {
        return;
    }
    var rem: u32 = idx;
    var base: u32 = 0u;
%s    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < %du; k = k + 1u) {
        sum = sum + src[base + k * %du];
    }
    dst[idx] = sum * %s;
}
`,
		stageWorkgroupSize,
		dstShape.NumElements(),
		decompose.String(),
		stage.Taps(), srcStrides[stage.Along()],
		scaleLiteral(stage.Scale()))
}

// groups returns the workgroup count covering extent at the given size.
func groups(extent, size int) uint32 {
	//nolint:gosec // G115: extents are non-negative
	return uint32((extent + size - 1) / size)
}

// clampTile shrinks a requested tile until its invocation count fits the
// device's workgroup limits, preserving the tiling structure.
func clampTile(w, h int, l pipeline.Limits) (int, int) {
	maxInv := int(l.MaxInvocationsPerWorkgroup)
	if maxInv == 0 {
		maxInv = 256
	}
	maxX := int(l.MaxWorkgroupSizeX)
	if maxX == 0 {
		maxX = 256
	}
	maxY := int(l.MaxWorkgroupSizeY)
	if maxY == 0 {
		maxY = 256
	}

	if w > maxX {
		w = maxX
	}
	if h > maxY {
		h = maxY
	}
	for w*h > maxInv {
		if w >= h {
			w /= 2
		} else {
			h /= 2
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
