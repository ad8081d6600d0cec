package b2l

import (
	"encoding/binary"
	"math"
)

// encode writes every array into the mesh buffer in stream order:
// indices, positions, normals, UV streams, tangent streams, weights.
// Empty arrays are omitted and get no reference.
func (m *PackedMesh) encode() error {
	m.array(ArrayIndex, func(b []byte) []byte { return appendUint16s(b, m.Indices) })
	m.array(ArrayPosition, func(b []byte) []byte { return appendVec3s(b, m.Positions) })
	m.array(ArrayNormal, func(b []byte) []byte { return appendVec3s(b, m.Normals) })

	if m.UVLayers > 0 {
		m.encodeUVs()
		if m.Tangents != nil {
			m.encodeTangents()
		}
	}

	switch m.Options.Weights {
	case WeightsVariable:
		return m.encodeVariableWeights()
	default:
		return m.encodeFixedWeights()
	}
}

// array records the local offset of name, then appends its bytes.
func (m *PackedMesh) array(name string, enc func([]byte) []byte) {
	start := len(m.blob)
	m.blob = enc(m.blob)
	m.Arrays = append(m.Arrays, ArrayRef{
		Name:   name,
		Offset: int64(start),
		Size:   int64(len(m.blob) - start),
	})
}

func (m *PackedMesh) encodeUVs() {
	if m.Options.UVLayout == UVSeparate {
		for l := range m.UVs {
			layer := m.UVs[l]
			m.array(layerArray("uv", l), func(b []byte) []byte { return appendVec2s(b, layer) })
		}
		return
	}
	m.array(ArrayUV, func(b []byte) []byte {
		for v := range m.Positions {
			for l := range m.UVs {
				uv := m.UVs[l][v]
				b = appendFloat32(b, uv[0])
				b = appendFloat32(b, uv[1])
			}
		}
		return b
	})
}

func (m *PackedMesh) encodeTangents() {
	if m.Options.UVLayout == UVSeparate {
		for l := range m.Tangents {
			layer := m.Tangents[l]
			m.array(layerArray("tangent", l), func(b []byte) []byte { return appendVec4s(b, layer) })
		}
		return
	}
	m.array(ArrayTangent, func(b []byte) []byte {
		for v := range m.Positions {
			for l := range m.Tangents {
				t := m.Tangents[l][v]
				for _, f := range t {
					b = appendFloat32(b, f)
				}
			}
		}
		return b
	})
}

func appendFloat32(b []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
}

func appendUint16s(b []byte, data []uint16) []byte {
	for _, v := range data {
		b = binary.LittleEndian.AppendUint16(b, v)
	}
	return b
}

func appendVec2s(b []byte, data [][2]float32) []byte {
	for _, v := range data {
		b = appendFloat32(b, v[0])
		b = appendFloat32(b, v[1])
	}
	return b
}

func appendVec3s(b []byte, data [][3]float32) []byte {
	for _, v := range data {
		b = appendFloat32(b, v[0])
		b = appendFloat32(b, v[1])
		b = appendFloat32(b, v[2])
	}
	return b
}

func appendVec4s(b []byte, data [][4]float32) []byte {
	for _, v := range data {
		for _, f := range v {
			b = appendFloat32(b, f)
		}
	}
	return b
}
