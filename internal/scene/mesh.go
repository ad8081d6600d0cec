package scene

import (
	"github.com/Faultbox/b2l/pkg/b2l"
)

// Mesh is a polygon mesh with per-loop attributes.
type Mesh struct {
	Name      string    `yaml:"name"`
	Materials []string  `yaml:"materials"` // Material slot names
	UVLayers  []string  `yaml:"uv_layers"`
	Vertices  []Vertex  `yaml:"vertices"`
	Polygons  []Polygon `yaml:"polygons"`
}

// Vertex is a source vertex.
type Vertex struct {
	Co     [3]float32    `yaml:"co"`
	Groups []GroupWeight `yaml:"groups"`
}

// GroupWeight assigns a vertex to a vertex group.
type GroupWeight struct {
	Group  int     `yaml:"group"`
	Weight float32 `yaml:"weight"`
}

// Polygon is a face with three or more loops.
type Polygon struct {
	Material    uint32 `yaml:"material"`
	SmoothGroup uint32 `yaml:"smooth_group"`
	Loops       []Loop `yaml:"loops"`
}

// Loop is one polygon corner.
type Loop struct {
	Vertex uint32       `yaml:"vertex"`
	Normal [3]float32   `yaml:"normal"`
	UV     [][2]float32 `yaml:"uv"`
}

// MaterialName resolves a material slot index. Empty slots resolve to "".
func (m *Mesh) MaterialName(index uint32) string {
	if int(index) < len(m.Materials) {
		return m.Materials[index]
	}
	return ""
}

// TriangleCount returns the number of triangles after fan triangulation.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Polygons {
		if len(p.Loops) >= 3 {
			n += len(p.Loops) - 2
		}
	}
	return n
}

// Input triangulates the mesh and returns it in packer form. Polygons are
// fanned from their first loop; polygons with fewer than three loops are
// dropped.
func (m *Mesh) Input() *b2l.MeshInput {
	in := &b2l.MeshInput{
		Positions: make([][3]float32, len(m.Vertices)),
		Triangles: make([]b2l.Triangle, 0, m.TriangleCount()),
		UVLayers:  len(m.UVLayers),
	}

	groups := make([][]b2l.GroupWeight, len(m.Vertices))
	hasGroups := false
	for i, v := range m.Vertices {
		in.Positions[i] = v.Co
		for _, g := range v.Groups {
			groups[i] = append(groups[i], b2l.GroupWeight{Group: g.Group, Weight: g.Weight})
			hasGroups = true
		}
	}
	if hasGroups {
		in.Groups = func(v uint32) []b2l.GroupWeight {
			return groups[v]
		}
	}

	corner := func(l Loop) b2l.Corner {
		return b2l.Corner{Vertex: l.Vertex, Normal: l.Normal, UV: l.UV}
	}
	for _, p := range m.Polygons {
		for i := 1; i+1 < len(p.Loops); i++ {
			in.Triangles = append(in.Triangles, b2l.Triangle{
				Corners:     [3]b2l.Corner{corner(p.Loops[0]), corner(p.Loops[i]), corner(p.Loops[i+1])},
				SmoothGroup: p.SmoothGroup,
				Material:    p.Material,
			})
		}
	}
	return in
}
