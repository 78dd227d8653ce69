package terrain

import (
	"math"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
)

// Func produces the voxel grid for a chunk. Implementations must be
// deterministic and safe to call from several goroutines.
type Func func(core.ChunkCoord) *core.VoxelData

const (
	baseHeight = 240
	amplitude  = 8
	wavelength = 16.0
)

// SurfaceHeight returns the highest solid y for world column (wx, wz).
func SurfaceHeight(wx, wz int) int {
	fx := float32(wx) / wavelength
	fz := float32(wz) / wavelength
	wave := float32(math.Sin(float64(fx))) * float32(math.Sin(float64(fz)))
	return baseHeight + int((wave+1)*amplitude)
}

// Generate fills every cell at or below the surface height.
func Generate(coord core.ChunkCoord) *core.VoxelData {
	ox, oz := coord.Origin()

	var heights [core.ChunkDepth][core.ChunkWidth]int
	for z := 0; z < core.ChunkDepth; z++ {
		for x := 0; x < core.ChunkWidth; x++ {
			heights[z][x] = SurfaceHeight(ox+x, oz+z)
		}
	}

	return core.NewVoxelData(coord, func(x, y, z int) core.BlockType {
		if y <= heights[z][x] {
			return core.Solid
		}
		return core.Air
	})
}
