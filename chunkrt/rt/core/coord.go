package core

import "fmt"

const (
	ChunkWidth  = 16
	ChunkDepth  = 16
	ChunkHeight = 256
)

// ChunkCoord addresses a 16x16 vertical column of voxels.
type ChunkCoord struct {
	X int32
	Z int32
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

func (c ChunkCoord) Add(dx, dz int32) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// Neighbors returns the four lateral neighbors in +X, -X, +Z, -Z order.
func (c ChunkCoord) Neighbors() [4]ChunkCoord {
	return [4]ChunkCoord{
		c.Add(1, 0),
		c.Add(-1, 0),
		c.Add(0, 1),
		c.Add(0, -1),
	}
}

// Origin is the world-space block position of the chunk's (0, 0) column.
func (c ChunkCoord) Origin() (x, z int) {
	return int(c.X) * ChunkWidth, int(c.Z) * ChunkDepth
}

// DistanceSq is the squared chunk distance between two coordinates.
func (c ChunkCoord) DistanceSq(o ChunkCoord) int64 {
	dx := int64(c.X - o.X)
	dz := int64(c.Z - o.Z)
	return dx*dx + dz*dz
}

// ChunkCoordFromWorld maps a world-space position to the chunk containing it.
// The division truncates toward zero.
func ChunkCoordFromWorld(x, z float32) ChunkCoord {
	return ChunkCoord{
		X: int32(x / ChunkWidth),
		Z: int32(z / ChunkDepth),
	}
}
