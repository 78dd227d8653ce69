package gpu

import (
	"github.com/gekko3d/voxstream/chunkrt/rt/loader"

	"github.com/cogentcore/webgpu/wgpu"
)

// PassSink forwards chunk draw calls into an open render pass.
// Meshes that were not created by Uploader are skipped.
type PassSink struct {
	Pass     *wgpu.RenderPassEncoder
	Pipeline *ChunkPipeline

	current *Mesh
}

func (s *PassSink) SetPipeline() {
	s.Pass.SetPipeline(s.Pipeline.Pipeline)
	s.Pass.SetBindGroup(0, s.Pipeline.BindGroup, nil)
}

func (s *PassSink) SetVertexBuffer(m loader.GpuMesh) {
	mesh, ok := m.(*Mesh)
	if !ok || mesh.VertexBuffer == nil {
		s.current = nil
		return
	}
	s.current = mesh
	s.Pass.SetVertexBuffer(0, mesh.VertexBuffer, 0, wgpu.WholeSize)
}

func (s *PassSink) SetIndexBuffer(m loader.GpuMesh) {
	mesh, ok := m.(*Mesh)
	if !ok || mesh != s.current || mesh.IndexBuffer == nil {
		s.current = nil
		return
	}
	s.Pass.SetIndexBuffer(mesh.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
}

func (s *PassSink) DrawIndexed(indexCount uint32) {
	if s.current == nil {
		return
	}
	s.Pass.DrawIndexed(indexCount, 1, 0, 0, 0)
}
