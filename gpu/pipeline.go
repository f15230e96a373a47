package gpu

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/castle/core"
	"github.com/gekko3d/castle/shaders"
)

// Pipelines holds the forward-pass pipeline variants plus the bind
// group layouts and shared sampler the rest of the gpu package builds
// bind groups against.
type Pipelines struct {
	Opaque      *wgpu.RenderPipeline
	Transparent *wgpu.RenderPipeline

	PassBGL     *wgpu.BindGroupLayout
	ObjectBGL   *wgpu.BindGroupLayout
	MaterialBGL *wgpu.BindGroupLayout
	TextureBGL  *wgpu.BindGroupLayout

	Sampler *wgpu.Sampler
}

func NewPipelines(e *Engine) (*Pipelines, error) {
	module, err := e.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "CastleShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.CastleWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	p := &Pipelines{}

	p.PassBGL, err = uniformBGL(e, "PassBGL", wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, false)
	if err != nil {
		return nil, err
	}
	p.ObjectBGL, err = uniformBGL(e, "ObjectBGL", wgpu.ShaderStageVertex, true)
	if err != nil {
		return nil, err
	}
	p.MaterialBGL, err = uniformBGL(e, "MaterialBGL", wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, true)
	if err != nil {
		return nil, err
	}

	p.TextureBGL, err = e.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "TextureBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("texture bind group layout: %w", err)
	}

	layout, err := e.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{
			p.PassBGL, p.ObjectBGL, p.MaterialBGL, p.TextureBGL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout: %w", err)
	}

	vlayout, err := vertexLayout(core.Vertex{})
	if err != nil {
		return nil, err
	}

	p.Opaque, err = forwardPipeline(e, "OpaquePipeline", module, layout, vlayout, nil, true)
	if err != nil {
		return nil, err
	}
	p.Transparent, err = forwardPipeline(e, "TransparentPipeline", module, layout, vlayout, &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}, false)
	if err != nil {
		return nil, err
	}

	p.Sampler, err = e.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "DiffuseSampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	return p, nil
}

func uniformBGL(e *Engine, label string, visibility wgpu.ShaderStage, dynamic bool) (*wgpu.BindGroupLayout, error) {
	bgl, err := e.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: dynamic,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return bgl, nil
}

func forwardPipeline(e *Engine, label string, module *wgpu.ShaderModule, layout *wgpu.PipelineLayout,
	vertexLayout wgpu.VertexBufferLayout, blend *wgpu.BlendState, depthWrite bool) (*wgpu.RenderPipeline, error) {
	pipeline, err := e.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    e.config.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend:     blend,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: depthWrite,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return pipeline, nil
}

// TextureBindGroup pairs a texture view with the shared sampler for
// bind group 3.
func (p *Pipelines) TextureBindGroup(e *Engine, label string, view *wgpu.TextureView) (*wgpu.BindGroup, error) {
	bg, err := e.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: p.TextureBGL,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view, Size: wgpu.WholeSize},
			{Binding: 1, Sampler: p.Sampler, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("texture bind group %s: %w", label, err)
	}
	return bg, nil
}

// vertexLayout derives the pipeline's vertex buffer layout from the
// attribute tags on the vertex struct, so the Go-side memory layout
// and the shader locations stay declared in one place.
func vertexLayout(vertex any) (wgpu.VertexBufferLayout, error) {
	t := reflect.TypeOf(vertex)
	if t.Kind() != reflect.Struct {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex layout: %s is not a struct", t)
	}

	var attrs []wgpu.VertexAttribute
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("castle") != "layout" {
			continue
		}
		format, err := vertexFormat(field.Tag.Get("format"))
		if err != nil {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex field %s: %w", field.Name, err)
		}
		location, err := strconv.Atoi(field.Tag.Get("location"))
		if err != nil {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("vertex field %s location: %w", field.Name, err)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			ShaderLocation: uint32(location),
			Offset:         uint64(field.Offset),
			Format:         format,
		})
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(t.Size()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

func vertexFormat(name string) (wgpu.VertexFormat, error) {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2, nil
	case "float3":
		return wgpu.VertexFormatFloat32x3, nil
	case "float4":
		return wgpu.VertexFormatFloat32x4, nil
	}
	return 0, fmt.Errorf("unsupported vertex format %q", name)
}
