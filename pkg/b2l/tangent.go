package b2l

import (
	"github.com/Faultbox/b2l/pkg/math"
)

// computeTangents returns {tx, ty, tz, sign} per vertex per UV layer.
// The bitangent is reconstructed as cross(tangent, normal) * sign.
func computeTangents(m *PackedMesh) [][][4]float32 {
	n := m.VertexCount()
	out := make([][][4]float32, m.UVLayers)

	for l := range out {
		uvs := m.UVs[l]
		tan := make([]math.Vec3, n)
		bitan := make([]math.Vec3, n)

		for i := 0; i+2 < len(m.Indices); i += 3 {
			i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
			p0 := math.Vec3FromArray(m.Positions[i0])
			e1 := math.Vec3FromArray(m.Positions[i1]).Sub(p0)
			e2 := math.Vec3FromArray(m.Positions[i2]).Sub(p0)

			uv0 := math.Vec2FromArray(uvs[i0])
			d1 := math.Vec2FromArray(uvs[i1]).Sub(uv0)
			d2 := math.Vec2FromArray(uvs[i2]).Sub(uv0)

			det := d1.Cross(d2)
			if det == 0 {
				continue
			}
			r := 1 / det
			t := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
			b := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)

			for _, v := range [3]uint16{i0, i1, i2} {
				tan[v] = tan[v].Add(t)
				bitan[v] = bitan[v].Add(b)
			}
		}

		layer := make([][4]float32, n)
		for v := range layer {
			normal := math.Vec3FromArray(m.Normals[v])
			t := tan[v].Sub(normal.Scale(normal.Dot(tan[v]))).Normalize()
			if t == (math.Vec3{}) {
				t = normal.Perpendicular()
			}
			sign := float32(1)
			if t.Cross(normal).Dot(bitan[v]) < 0 {
				sign = -1
			}
			layer[v] = [4]float32{t.X, t.Y, t.Z, sign}
		}
		out[l] = layer
	}
	return out
}
