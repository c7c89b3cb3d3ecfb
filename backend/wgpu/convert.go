// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glaze/gpu"
)

func convertTextureFormat(f gpu.TextureFormat) gputypes.TextureFormat {
	switch f {
	case gpu.TextureFormatR8Unorm:
		return gputypes.TextureFormatR8Unorm
	case gpu.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case gpu.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatBGRA8Unorm
	}
}

func convertBufferUsage(u gpu.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u&gpu.BufferUsageVertex != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if u&gpu.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if u&gpu.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	return out
}

func convertTextureUsage(u gpu.TextureUsage) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&gpu.TextureUsageCopyDst != 0 {
		out |= gputypes.TextureUsageCopyDst
	}
	if u&gpu.TextureUsageBinding != 0 {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&gpu.TextureUsageRenderAttachment != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	return out
}

func convertVertexFormat(f gpu.VertexFormat) gputypes.VertexFormat {
	switch f {
	case gpu.VertexFormatFloat32:
		return gputypes.VertexFormatFloat32
	case gpu.VertexFormatFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case gpu.VertexFormatFloat32x3:
		return gputypes.VertexFormatFloat32x3
	case gpu.VertexFormatFloat32x4:
		return gputypes.VertexFormatFloat32x4
	case gpu.VertexFormatUint32:
		return gputypes.VertexFormatUint32
	default:
		return gputypes.VertexFormatFloat32
	}
}

func convertVertexLayouts(layouts []gpu.VertexLayout) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]gputypes.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			attrs = append(attrs, gputypes.VertexAttribute{
				Format:         convertVertexFormat(a.Format),
				Offset:         uint64(a.Offset),
				ShaderLocation: a.ShaderLocation,
			})
		}
		step := gputypes.VertexStepModeVertex
		if l.StepMode == gpu.StepModeInstance {
			step = gputypes.VertexStepModeInstance
		}
		out = append(out, gputypes.VertexBufferLayout{
			ArrayStride: uint64(l.Stride),
			StepMode:    step,
			Attributes:  attrs,
		})
	}
	return out
}
