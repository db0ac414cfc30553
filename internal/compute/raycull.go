// GPU ray culling: test every bounding sphere against one ray in parallel.
package compute

import (
	"github.com/cogentcore/webgpu/wgpu"
	rl "github.com/gen2brain/raylib-go/raylib"

	"pick3d/internal/spatial"
)

// RayCull runs the coarse hit-test pass on the GPU. It reports candidate
// sphere indices with their ray parameters; exact geometry tests stay on the
// CPU. Candidate order is nondeterministic, callers sort.
type RayCull struct {
	system   *System
	pipeline *Pipeline

	sphereBuffer    *Buffer // input: center + radius per object
	candidateBuffer *Buffer // output: (index, t) per candidate
	countBuffer     *Buffer // output: candidate count
	paramBuffer     *Buffer // uniform: ray + object count

	maxObjects    uint32
	maxCandidates uint32
}

// Candidate is one sphere the ray pierced. T is the entry distance along the
// ray, zero when the origin is inside.
type Candidate struct {
	Index uint32
	T     float32
}

// cullParams mirrors the WGSL Params uniform: two vec4-aligned rows.
type cullParams struct {
	OriginX, OriginY, OriginZ float32
	Count                     uint32
	DirX, DirY, DirZ          float32
	Pad                       float32
}

const rayCullShader = `
// One thread per sphere, quadratic ray-sphere test.
// Survivors append (index, t) through an atomic cursor.

struct Sphere {
    center: vec3<f32>,
    radius: f32,
}

struct Params {
    origin: vec3<f32>,
    count: u32,
    dir: vec3<f32>,
    pad: f32,
}

struct Candidate {
    index: u32,
    t: f32,
}

@group(0) @binding(0) var<storage, read> spheres: array<Sphere>;
@group(0) @binding(1) var<storage, read_write> candidates: array<Candidate>;
@group(0) @binding(2) var<storage, read_write> candidateCount: atomic<u32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= params.count) {
        return;
    }

    let s = spheres[i];
    let oc = params.origin - s.center;
    let b = dot(oc, params.dir);
    let c = dot(oc, oc) - s.radius * s.radius;
    let disc = b * b - c;
    if (disc < 0.0) {
        return;
    }

    let sq = sqrt(disc);
    if (-b + sq < 0.0) {
        // Sphere entirely behind the origin.
        return;
    }
    var t = -b - sq;
    if (t < 0.0) {
        t = 0.0;
    }

    let idx = atomicAdd(&candidateCount, 1u);
    if (idx < arrayLength(&candidates)) {
        candidates[idx] = Candidate(i, t);
    }
}
`

// NewRayCull allocates the culling pass. maxCandidates bounds the output;
// overflow candidates are counted but dropped. Returns nil when the compute
// system is unavailable.
func NewRayCull(maxObjects, maxCandidates uint32) (*RayCull, error) {
	sys := Get()
	if sys == nil {
		return nil, nil
	}

	pipeline, err := sys.CreatePipeline("raycull", rayCullShader, "main")
	if err != nil {
		return nil, err
	}

	sphereBuffer, err := sys.CreateBuffer("cull_spheres", uint64(maxObjects)*16,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	candidateBuffer, err := sys.CreateBuffer("cull_candidates", uint64(maxCandidates)*8,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		sphereBuffer.Release()
		return nil, err
	}

	countBuffer, err := sys.CreateBuffer("cull_count", 4,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		sphereBuffer.Release()
		candidateBuffer.Release()
		return nil, err
	}

	paramBuffer, err := sys.CreateBuffer("cull_params", 32,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		sphereBuffer.Release()
		candidateBuffer.Release()
		countBuffer.Release()
		return nil, err
	}

	return &RayCull{
		system:          sys,
		pipeline:        pipeline,
		sphereBuffer:    sphereBuffer,
		candidateBuffer: candidateBuffer,
		countBuffer:     countBuffer,
		paramBuffer:     paramBuffer,
		maxObjects:      maxObjects,
		maxCandidates:   maxCandidates,
	}, nil
}

// Candidates tests every sphere against the ray and returns the survivors.
// Indices refer to the input slice order.
func (rc *RayCull) Candidates(spheres []spatial.Sphere, ray rl.Ray) ([]Candidate, error) {
	if len(spheres) == 0 {
		return nil, nil
	}
	if uint32(len(spheres)) > rc.maxObjects {
		spheres = spheres[:rc.maxObjects]
	}

	dir := rl.Vector3Normalize(ray.Direction)
	count := uint32(len(spheres))

	rc.system.WriteBuffer(rc.sphereBuffer, 0, ToBytes(spheres))
	rc.system.WriteBuffer(rc.countBuffer, 0, ToBytes([]uint32{0}))
	rc.system.WriteBuffer(rc.paramBuffer, 0, ToBytes([]cullParams{{
		OriginX: ray.Position.X, OriginY: ray.Position.Y, OriginZ: ray.Position.Z,
		Count: count,
		DirX:  dir.X, DirY: dir.Y, DirZ: dir.Z,
	}}))

	err := rc.system.Dispatch(DispatchParams{
		Pipeline:    rc.pipeline,
		Buffers:     []*Buffer{rc.sphereBuffer, rc.candidateBuffer, rc.countBuffer, rc.paramBuffer},
		WorkgroupsX: (count + 255) / 256,
	})
	if err != nil {
		return nil, err
	}

	countData, err := rc.system.ReadBuffer(rc.countBuffer)
	if err != nil {
		return nil, err
	}
	found := fromBytes[uint32](countData)[0]
	if found == 0 {
		return nil, nil
	}
	if found > rc.maxCandidates {
		found = rc.maxCandidates
	}

	candidateData, err := rc.system.ReadBuffer(rc.candidateBuffer)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, found)
	copy(out, fromBytes[Candidate](candidateData)[:found])
	return out, nil
}

// Release frees the pass's GPU buffers.
func (rc *RayCull) Release() {
	if rc.sphereBuffer != nil {
		rc.sphereBuffer.Release()
	}
	if rc.candidateBuffer != nil {
		rc.candidateBuffer.Release()
	}
	if rc.countBuffer != nil {
		rc.countBuffer.Release()
	}
	if rc.paramBuffer != nil {
		rc.paramBuffer.Release()
	}
}
