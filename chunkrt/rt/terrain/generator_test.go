package terrain

import (
	"testing"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	for _, c := range []core.ChunkCoord{{X: 0, Z: 0}, {X: -3, Z: 7}, {X: 1000, Z: -1000}} {
		a := Generate(c)
		b := Generate(c)
		require.True(t, a.Equal(b), "chunk %v differs between runs", c)
	}
}

func TestSurfaceHeightRange(t *testing.T) {
	for wx := -64; wx < 64; wx += 3 {
		for wz := -64; wz < 64; wz += 5 {
			h := SurfaceHeight(wx, wz)
			if h < 240 || h > 256 {
				t.Errorf("height %d at (%d,%d) outside [240,256]", h, wx, wz)
			}
		}
	}
	// sin(0) = 0 so the wave contributes (0+1)*8
	assert.Equal(t, 248, SurfaceHeight(0, 0))
}

func TestGenerateColumnsMatchHeight(t *testing.T) {
	c := core.ChunkCoord{X: 2, Z: -1}
	v := Generate(c)
	ox, oz := c.Origin()

	for z := 0; z < core.ChunkDepth; z++ {
		for x := 0; x < core.ChunkWidth; x++ {
			h := SurfaceHeight(ox+x, oz+z)
			assert.True(t, v.Solid(x, h, z), "surface cell missing at %d,%d", x, z)
			assert.True(t, v.Solid(x, 0, z))
			if h+1 < core.ChunkHeight {
				assert.False(t, v.Solid(x, h+1, z), "air expected above surface at %d,%d", x, z)
			}
		}
	}
}
