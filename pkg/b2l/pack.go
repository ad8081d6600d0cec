package b2l

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PackedMesh is a deduplicated, indexed mesh and its encoded arrays.
// Offsets in Arrays are local to the mesh; Flush rebases them.
type PackedMesh struct {
	Options  Options
	UVLayers int

	// WeightsPerVertex is the largest group count of any unique vertex.
	WeightsPerVertex int
	// NumVertexWeights is the total number of group assignments written
	// by the variable scheme.
	NumVertexWeights int

	Submeshes    []Submesh
	LoopVertices []uint16 // Output vertex of each corner, indexed by loop
	Indices      []uint16 // Grouped by submesh

	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][][2]float32 // [layer][vertex]
	Tangents  [][][4]float32 // [layer][vertex], nil unless Options.Tangents
	Groups    [][]GroupWeight

	Arrays   []ArrayRef
	Warnings []Warning

	blob []byte
}

// TriangleCount returns the number of triangles in the index array.
func (m *PackedMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of unique output vertices.
func (m *PackedMesh) VertexCount() int {
	return len(m.Positions)
}

// Empty reports whether the mesh had no triangles. Empty meshes emit nothing.
func (m *PackedMesh) Empty() bool {
	return len(m.Indices) == 0
}

// Bytes returns the encoded arrays back to back.
func (m *PackedMesh) Bytes() []byte {
	return m.blob
}

// Array returns the named array reference.
func (m *PackedMesh) Array(name string) (ArrayRef, bool) {
	for _, a := range m.Arrays {
		if a.Name == name {
			return a, true
		}
	}
	return ArrayRef{}, false
}

// vertexTable maps vertex keys to output indices. Keys are the raw bytes of
// (source vertex, smooth group, material, uv bits...) so float equality is
// bitwise.
type vertexTable struct {
	index map[string]uint16
	key   []byte
}

func newVertexTable(uvLayers int) *vertexTable {
	return &vertexTable{
		index: make(map[string]uint16),
		key:   make([]byte, 0, 12+8*uvLayers),
	}
}

func (t *vertexTable) setKey(vertex, smoothGroup, material uint32, uv [][2]float32) {
	k := t.key[:0]
	k = binary.LittleEndian.AppendUint32(k, vertex)
	k = binary.LittleEndian.AppendUint32(k, smoothGroup)
	k = binary.LittleEndian.AppendUint32(k, material)
	for _, c := range uv {
		k = binary.LittleEndian.AppendUint32(k, math.Float32bits(c[0]))
		k = binary.LittleEndian.AppendUint32(k, math.Float32bits(c[1]))
	}
	t.key = k
}

func (t *vertexTable) find() (uint16, bool) {
	i, ok := t.index[string(t.key)]
	return i, ok
}

func (t *vertexTable) insert() (uint16, error) {
	n := len(t.index)
	if n >= MaxVertices {
		return 0, ErrTooManyVertices
	}
	t.index[string(t.key)] = uint16(n)
	return uint16(n), nil
}

// PackMesh deduplicates and encodes one mesh.
//
// A mesh with no triangles is not an error: the result is Empty and
// carries no arrays.
func PackMesh(in *MeshInput, opts Options) (*PackedMesh, error) {
	m := &PackedMesh{
		Options:  opts,
		UVLayers: in.UVLayers,
	}
	if len(in.Triangles) == 0 {
		return m, nil
	}
	if len(in.Triangles) > MaxTriangles {
		return nil, fmt.Errorf("%w: %d triangles", ErrTooManyTriangles, len(in.Triangles))
	}

	table := newVertexTable(in.UVLayers)
	m.LoopVertices = make([]uint16, 3*len(in.Triangles))
	m.UVs = make([][][2]float32, in.UVLayers)

	var materials []uint32
	buckets := make(map[uint32][]int)

	for ti := range in.Triangles {
		tri := &in.Triangles[ti]
		if _, ok := buckets[tri.Material]; !ok {
			materials = append(materials, tri.Material)
		}
		buckets[tri.Material] = append(buckets[tri.Material], ti)

		for ci := range tri.Corners {
			c := &tri.Corners[ci]
			loop := 3*ti + ci
			if int(c.Vertex) >= len(in.Positions) {
				return nil, fmt.Errorf("%w: loop %d vertex %d", ErrVertexOutOfRange, loop, c.Vertex)
			}
			if len(c.UV) != in.UVLayers {
				return nil, fmt.Errorf("%w: loop %d has %d, want %d", ErrUVLayerMismatch, loop, len(c.UV), in.UVLayers)
			}

			table.setKey(c.Vertex, tri.SmoothGroup, tri.Material, c.UV)
			idx, ok := table.find()
			if !ok {
				var err error
				if idx, err = table.insert(); err != nil {
					return nil, err
				}
				m.addVertex(in, c)
			}
			m.LoopVertices[loop] = idx
		}
	}

	m.Indices = make([]uint16, 0, 3*len(in.Triangles))
	for _, mat := range materials {
		tris := buckets[mat]
		m.Submeshes = append(m.Submeshes, Submesh{
			Material:      mat,
			FirstTriangle: len(m.Indices) / 3,
			TriangleCount: len(tris),
		})
		for _, ti := range tris {
			m.Indices = append(m.Indices, m.LoopVertices[3*ti:3*ti+3]...)
		}
	}

	if opts.Tangents && in.UVLayers > 0 {
		m.Tangents = computeTangents(m)
	}

	if err := m.encode(); err != nil {
		return nil, err
	}
	return m, nil
}

// addVertex appends the attributes of a newly seen vertex. Groups belong to
// the source vertex, so they are resolved once per output vertex.
func (m *PackedMesh) addVertex(in *MeshInput, c *Corner) {
	m.Positions = append(m.Positions, in.Positions[c.Vertex])
	m.Normals = append(m.Normals, c.Normal)
	for l, uv := range c.UV {
		m.UVs[l] = append(m.UVs[l], uv)
	}

	var groups []GroupWeight
	if in.Groups != nil {
		if src := in.Groups(c.Vertex); len(src) > 0 {
			groups = append([]GroupWeight(nil), src...)
		}
	}
	m.Groups = append(m.Groups, groups)
	if len(groups) > m.WeightsPerVertex {
		m.WeightsPerVertex = len(groups)
	}
}

// Flush appends the encoded arrays to w in order and returns their
// references rebased on w's cursor. On error the returned offsets must not
// be used.
func (m *PackedMesh) Flush(w *BlobWriter) ([]ArrayRef, error) {
	refs := make([]ArrayRef, 0, len(m.Arrays))
	for _, a := range m.Arrays {
		ref := ArrayRef{Name: a.Name, Offset: w.Offset(), Size: a.Size}
		if _, err := w.Write(m.blob[a.Offset : a.Offset+a.Size]); err != nil {
			return nil, fmt.Errorf("writing %s: %w", a.Name, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
