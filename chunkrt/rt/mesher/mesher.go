package mesher

import (
	"github.com/gekko3d/voxstream/chunkrt/rt/atlas"
	"github.com/gekko3d/voxstream/chunkrt/rt/core"
)

const (
	verticesPerFace = 4
	indicesPerFace  = 6
)

// Corner offsets per face, ordered top-left, bottom-left, top-right,
// bottom-right as seen from outside the cube.
var faceCorners = [6][4][3]int{
	core.FaceFront:  {{0, 1, 1}, {0, 0, 1}, {1, 1, 1}, {1, 0, 1}},
	core.FaceRight:  {{1, 1, 1}, {1, 0, 1}, {1, 1, 0}, {1, 0, 0}},
	core.FaceBack:   {{1, 1, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 0}},
	core.FaceLeft:   {{0, 1, 0}, {0, 0, 0}, {0, 1, 1}, {0, 0, 1}},
	core.FaceTop:    {{0, 1, 0}, {0, 1, 1}, {1, 1, 0}, {1, 1, 1}},
	core.FaceBottom: {{0, 0, 1}, {0, 0, 0}, {1, 0, 1}, {1, 0, 0}},
}

var cornerUV = [4][2]float32{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

var faceIndices = [indicesPerFace]uint32{0, 1, 2, 1, 3, 2}

// Mesh emits one quad per solid cell face that is not covered by another
// solid cell. Faces on a lateral chunk edge are covered only when the
// neighbor chunk is supplied and its touching cell is solid.
func Mesh(local *core.VoxelData, n Neighbors) CpuMesh {
	var m CpuMesh
	if local == nil || local.Empty() {
		return m
	}
	ox, oz := local.Coord.Origin()

	for z := 0; z < core.ChunkDepth; z++ {
		for y := 0; y < core.ChunkHeight; y++ {
			for x := 0; x < core.ChunkWidth; x++ {
				block := local.Block(x, y, z)
				if !block.Opaque() {
					continue
				}
				tiles, _ := atlas.Lookup(block)
				for _, f := range core.Faces {
					if covered(local, n, x, y, z, f) {
						continue
					}
					m.appendFace(f, ox+x, y, oz+z, tiles.For(f))
				}
			}
		}
	}
	return m
}

func covered(local *core.VoxelData, n Neighbors, x, y, z int, f core.Face) bool {
	dx, dy, dz := f.Offset()
	nx, ny, nz := x+dx, y+dy, z+dz

	if ny < 0 || ny >= core.ChunkHeight {
		return false
	}

	switch {
	case nx >= core.ChunkWidth:
		return n.PosX != nil && n.PosX.Solid(0, ny, nz)
	case nx < 0:
		return n.NegX != nil && n.NegX.Solid(core.ChunkWidth-1, ny, nz)
	case nz >= core.ChunkDepth:
		return n.PosZ != nil && n.PosZ.Solid(nx, ny, 0)
	case nz < 0:
		return n.NegZ != nil && n.NegZ.Solid(nx, ny, core.ChunkDepth-1)
	}
	return local.Solid(nx, ny, nz)
}

func (m *CpuMesh) appendFace(f core.Face, wx, wy, wz int, tile atlas.Tile) {
	start := uint32(len(m.Vertices))
	normal := f.Normal()
	for i, c := range faceCorners[f] {
		m.Vertices = append(m.Vertices, Vertex{
			Position: [3]float32{
				float32(wx + c[0]),
				float32(wy + c[1]),
				float32(wz + c[2]),
			},
			Normal:    normal,
			TexCoords: atlas.UV(tile, cornerUV[i][0], cornerUV[i][1]),
		})
	}
	for _, idx := range faceIndices {
		m.Indices = append(m.Indices, start+idx)
	}
}
