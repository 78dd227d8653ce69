package gpu

import (
	"fmt"

	"github.com/gekko3d/voxstream/chunkrt/rt/loader"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"

	"github.com/cogentcore/webgpu/wgpu"
)

// Mesh owns the vertex and index buffers of one chunk.
type Mesh struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	indexCount   uint32
}

func (m *Mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *Mesh) Release() {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Release()
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Release()
		m.IndexBuffer = nil
	}
	m.indexCount = 0
}

// Uploader creates chunk buffers on a device. Use it only from the
// goroutine that owns the device.
type Uploader struct {
	Device *wgpu.Device
}

func NewUploader(device *wgpu.Device) *Uploader {
	return &Uploader{Device: device}
}

func (u *Uploader) Upload(label string, m *mesher.CpuMesh) (loader.GpuMesh, error) {
	if m.Empty() {
		return nil, nil
	}

	vertexBuf, err := u.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " vertices",
		Contents: wgpu.ToBytes(m.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	indexBuf, err := u.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " indices",
		Contents: wgpu.ToBytes(m.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertexBuf.Release()
		return nil, fmt.Errorf("index buffer: %w", err)
	}

	return &Mesh{
		VertexBuffer: vertexBuf,
		IndexBuffer:  indexBuf,
		indexCount:   uint32(len(m.Indices)),
	}, nil
}
