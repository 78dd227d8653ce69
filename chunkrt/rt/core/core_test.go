package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCoordFromWorld(t *testing.T) {
	cases := []struct {
		x, z float32
		want ChunkCoord
	}{
		{0, 0, ChunkCoord{0, 0}},
		{15.9, 0, ChunkCoord{0, 0}},
		{16, 32, ChunkCoord{1, 2}},
		{-20, 40, ChunkCoord{-1, 2}},
		// truncation, not floor
		{-3, -15, ChunkCoord{0, 0}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ChunkCoordFromWorld(c.x, c.z), "pos (%v,%v)", c.x, c.z)
	}
}

func TestChunkCoordNeighbors(t *testing.T) {
	n := ChunkCoord{3, -2}.Neighbors()
	assert.Equal(t, [4]ChunkCoord{{4, -2}, {2, -2}, {3, -1}, {3, -3}}, n)

	x, z := ChunkCoord{-1, 2}.Origin()
	assert.Equal(t, -16, x)
	assert.Equal(t, 32, z)
}

func TestVoxelData_FillAndQuery(t *testing.T) {
	v := NewVoxelData(ChunkCoord{1, 1}, func(x, y, z int) BlockType {
		if y < 2 {
			return Solid
		}
		return Air
	})

	require.Equal(t, 2*ChunkWidth*ChunkDepth, v.SolidCount())
	assert.True(t, v.Solid(0, 0, 0))
	assert.True(t, v.Solid(15, 1, 15))
	assert.False(t, v.Solid(0, 2, 0))
	assert.Equal(t, Solid, v.Block(4, 1, 9))

	// out of bounds reads as air
	assert.False(t, v.Solid(-1, 0, 0))
	assert.False(t, v.Solid(0, ChunkHeight, 0))
	assert.Equal(t, Air, v.Block(16, 0, 0))
	assert.False(t, v.Empty())
}

func TestVoxelData_Equal(t *testing.T) {
	fill := func(x, y, z int) BlockType {
		if x == y%16 {
			return Solid
		}
		return Air
	}
	a := NewVoxelData(ChunkCoord{0, 0}, fill)
	b := NewVoxelData(ChunkCoord{0, 0}, fill)
	c := NewVoxelData(ChunkCoord{0, 0}, nil)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, c.Empty())
	assert.False(t, a.Equal(NewVoxelData(ChunkCoord{0, 1}, fill)))
}

func TestCamera_ApplyMovesAlongHeading(t *testing.T) {
	cam := NewCamera(mgl32.Vec3{0, 0, 0})
	cam.Speed = 10

	// yaw starts at pi/2, so forward is +Z
	cam.Apply(MovementDelta{Forward: 1}, 0.5)
	assert.InDelta(t, 0, cam.Position.X(), 1e-4)
	assert.InDelta(t, 5, cam.Position.Z(), 1e-4)

	// diagonal movement is normalized
	cam = NewCamera(mgl32.Vec3{})
	cam.Speed = 1
	cam.Apply(MovementDelta{Forward: 1, Right: 1}, 1)
	assert.InDelta(t, 1, mgl32.Vec2{cam.Position.X(), cam.Position.Z()}.Len(), 1e-4)

	cam.Apply(MovementDelta{Up: 1}, 2)
	assert.InDelta(t, 2, cam.Position.Y(), 1e-4)
}

func TestCamera_PitchClamp(t *testing.T) {
	cam := NewCamera(mgl32.Vec3{})
	cam.Apply(MovementDelta{Pitch: math.Pi}, 0)
	assert.InDelta(t, mgl32.DegToRad(89), cam.Pitch, 1e-5)

	cam.Apply(MovementDelta{Pitch: -2 * math.Pi}, 0)
	assert.InDelta(t, -mgl32.DegToRad(89), cam.Pitch, 1e-5)
}

func TestCamera_ChunkCoord(t *testing.T) {
	cam := NewCamera(mgl32.Vec3{33, 250, -17})
	assert.Equal(t, ChunkCoord{2, -1}, cam.ChunkCoord())
}

func TestMovementDelta_Reset(t *testing.T) {
	m := MovementDelta{Forward: 1, Yaw: 0.2}
	assert.False(t, m.Idle())
	m.Reset()
	assert.True(t, m.Idle())
}
