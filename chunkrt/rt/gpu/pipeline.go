package gpu

import (
	"fmt"

	"github.com/gekko3d/voxstream/chunkrt/rt/atlas"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"
	"github.com/gekko3d/voxstream/chunkrt/rt/shaders"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DepthFormat     = wgpu.TextureFormatDepth32Float
	atlasTilePixels = 16
)

// ChunkPipeline is the render pipeline for chunk meshes together with its
// camera uniform, atlas texture and depth target.
type ChunkPipeline struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	Pipeline  *wgpu.RenderPipeline
	BindGroup *wgpu.BindGroup

	cameraBuffer *wgpu.Buffer
	atlasTexture *wgpu.Texture
	atlasView    *wgpu.TextureView
	sampler      *wgpu.Sampler

	depthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
}

func NewChunkPipeline(device *wgpu.Device, queue *wgpu.Queue, colorFormat wgpu.TextureFormat, width, height uint32) (*ChunkPipeline, error) {
	p := &ChunkPipeline{device: device, queue: queue}

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "chunk shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ChunkWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}
	defer shader.Release()

	vertexLayout, err := VertexBufferLayout(mesher.Vertex{})
	if err != nil {
		return nil, err
	}

	p.Pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "chunk pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    colorFormat,
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chunk pipeline: %w", err)
	}

	identity := mgl32.Ident4()
	p.cameraBuffer, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "chunk camera",
		Contents: wgpu.ToBytes(identity[:]),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("camera buffer: %w", err)
	}

	if err := p.createAtlas(); err != nil {
		p.Release()
		return nil, err
	}

	layout := p.Pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	p.BindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "chunk bind group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.cameraBuffer, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: p.atlasView},
			{Binding: 2, Sampler: p.sampler},
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("chunk bind group: %w", err)
	}

	if err := p.Resize(width, height); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *ChunkPipeline) createAtlas() error {
	img := atlas.BuildImage(atlasTilePixels)
	size := img.Bounds().Size()
	extent := wgpu.Extent3D{
		Width:              uint32(size.X),
		Height:             uint32(size.Y),
		DepthOrArrayLayers: 1,
	}

	var err error
	p.atlasTexture, err = p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "chunk atlas",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("atlas texture: %w", err)
	}
	p.atlasView, err = p.atlasTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("atlas view: %w", err)
	}

	err = p.queue.WriteTexture(
		p.atlasTexture.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: uint32(size.Y),
		},
		&extent,
	)
	if err != nil {
		return fmt.Errorf("atlas upload: %w", err)
	}

	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0.,
		LodMaxClamp:   1.,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("atlas sampler: %w", err)
	}
	return nil
}

// Resize recreates the depth target.
func (p *ChunkPipeline) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	if p.DepthView != nil {
		p.DepthView.Release()
		p.depthTexture.Release()
	}

	var err error
	p.depthTexture, err = p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "chunk depth",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	p.DepthView, err = p.depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("depth view: %w", err)
	}
	return nil
}

func (p *ChunkPipeline) UpdateCamera(viewProj mgl32.Mat4) error {
	return p.queue.WriteBuffer(p.cameraBuffer, 0, wgpu.ToBytes(viewProj[:]))
}

func (p *ChunkPipeline) Release() {
	if p.BindGroup != nil {
		p.BindGroup.Release()
	}
	if p.DepthView != nil {
		p.DepthView.Release()
	}
	if p.depthTexture != nil {
		p.depthTexture.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.atlasView != nil {
		p.atlasView.Release()
	}
	if p.atlasTexture != nil {
		p.atlasTexture.Release()
	}
	if p.cameraBuffer != nil {
		p.cameraBuffer.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
}
