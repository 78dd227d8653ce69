package mesher

import (
	"github.com/gekko3d/voxstream/chunkrt/rt/core"
)

// Vertex is the chunk vertex layout uploaded to the GPU.
type Vertex struct {
	Position  [3]float32 `gpu:"layout" location:"0" format:"float3"`
	Normal    [3]float32 `gpu:"layout" location:"1" format:"float3"`
	TexCoords [2]float32 `gpu:"layout" location:"2" format:"float2"`
}

// CpuMesh is an indexed triangle list in world space.
type CpuMesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Empty meshes must never be uploaded.
func (m *CpuMesh) Empty() bool {
	return m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0
}

func (m *CpuMesh) FaceCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / indicesPerFace
}

// Neighbors holds the voxel data of the four lateral neighbor chunks.
// A nil entry means the neighbor is not loaded.
type Neighbors struct {
	PosX *core.VoxelData
	NegX *core.VoxelData
	PosZ *core.VoxelData
	NegZ *core.VoxelData
}

// Count is the mesh completeness score, 0 to 4.
func (n Neighbors) Count() int {
	c := 0
	for _, v := range [4]*core.VoxelData{n.PosX, n.NegX, n.PosZ, n.NegZ} {
		if v != nil {
			c++
		}
	}
	return c
}

// Gather collects neighbors of coord using lookup, which reports absent chunks as nil.
func Gather(coord core.ChunkCoord, lookup func(core.ChunkCoord) *core.VoxelData) Neighbors {
	n := coord.Neighbors()
	return Neighbors{
		PosX: lookup(n[0]),
		NegX: lookup(n[1]),
		PosZ: lookup(n[2]),
		NegZ: lookup(n[3]),
	}
}
