package gpu

import (
	"testing"

	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexBufferLayout_ChunkVertex(t *testing.T) {
	layout, err := VertexBufferLayout(mesher.Vertex{})
	require.NoError(t, err)

	assert.Equal(t, uint64(32), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 3)

	assert.Equal(t, wgpu.VertexAttribute{ShaderLocation: 0, Offset: 0, Format: wgpu.VertexFormatFloat32x3}, layout.Attributes[0])
	assert.Equal(t, wgpu.VertexAttribute{ShaderLocation: 1, Offset: 12, Format: wgpu.VertexFormatFloat32x3}, layout.Attributes[1])
	assert.Equal(t, wgpu.VertexAttribute{ShaderLocation: 2, Offset: 24, Format: wgpu.VertexFormatFloat32x2}, layout.Attributes[2])
}

func TestVertexBufferLayout_Errors(t *testing.T) {
	_, err := VertexBufferLayout(42)
	assert.Error(t, err)

	type badFormat struct {
		P [3]float32 `gpu:"layout" location:"0" format:"half3"`
	}
	_, err = VertexBufferLayout(badFormat{})
	assert.ErrorContains(t, err, "half3")

	type badLocation struct {
		P [3]float32 `gpu:"layout" location:"x" format:"float3"`
	}
	_, err = VertexBufferLayout(badLocation{})
	assert.ErrorContains(t, err, "location")
}

func TestUploader_SkipsEmptyMesh(t *testing.T) {
	u := NewUploader(nil)
	m, err := u.Upload("empty", &mesher.CpuMesh{})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestPassSink_IgnoresForeignMeshes(t *testing.T) {
	s := &PassSink{}
	s.SetVertexBuffer(foreignMesh{})
	s.SetIndexBuffer(foreignMesh{})
	assert.NotPanics(t, func() { s.DrawIndexed(6) })
}

type foreignMesh struct{}

func (foreignMesh) IndexCount() uint32 { return 6 }
func (foreignMesh) Release()           {}
