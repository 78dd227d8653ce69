package core

import (
	"slices"

	"github.com/willf/bitset"
)

type BlockType uint8

const (
	Air BlockType = iota
	Solid
)

func (b BlockType) Opaque() bool {
	return b != Air
}

// VoxelData is the block grid of one chunk column. It has no mutators and
// may be shared between goroutines once built.
type VoxelData struct {
	Coord  ChunkCoord
	blocks []BlockType
	solid  *bitset.BitSet
}

const voxelCount = ChunkWidth * ChunkHeight * ChunkDepth

func voxelIndex(x, y, z int) int {
	return (z*ChunkHeight+y)*ChunkWidth + x
}

func inBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkWidth &&
		y >= 0 && y < ChunkHeight &&
		z >= 0 && z < ChunkDepth
}

// NewVoxelData builds a grid by calling fill for every cell, z-major then y then x.
func NewVoxelData(coord ChunkCoord, fill func(x, y, z int) BlockType) *VoxelData {
	v := &VoxelData{
		Coord:  coord,
		blocks: make([]BlockType, voxelCount),
		solid:  bitset.New(voxelCount),
	}
	if fill == nil {
		return v
	}
	for z := 0; z < ChunkDepth; z++ {
		for y := 0; y < ChunkHeight; y++ {
			for x := 0; x < ChunkWidth; x++ {
				b := fill(x, y, z)
				i := voxelIndex(x, y, z)
				v.blocks[i] = b
				if b.Opaque() {
					v.solid.Set(uint(i))
				}
			}
		}
	}
	return v
}

// Block returns Air for cells outside the grid.
func (v *VoxelData) Block(x, y, z int) BlockType {
	if !inBounds(x, y, z) {
		return Air
	}
	return v.blocks[voxelIndex(x, y, z)]
}

func (v *VoxelData) Solid(x, y, z int) bool {
	if !inBounds(x, y, z) {
		return false
	}
	return v.solid.Test(uint(voxelIndex(x, y, z)))
}

func (v *VoxelData) SolidCount() int {
	return int(v.solid.Count())
}

func (v *VoxelData) Empty() bool {
	return v.solid.None()
}

// Equal reports whether both grids hold identical blocks.
func (v *VoxelData) Equal(o *VoxelData) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.Coord == o.Coord && v.solid.Equal(o.solid) && slices.Equal(v.blocks, o.blocks)
}
