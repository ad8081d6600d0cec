// Package b2l packs triangulated meshes into the b2l binary blob layout.
//
// A mesh is deduplicated into unique output vertices keyed on
// (source vertex, smooth group, material, UVs), remapped into a 16-bit
// index buffer grouped by material, and encoded as little-endian arrays.
// The textual side of the format stores each array's byte offset in the
// blob as an "<array>_offset" field.
package b2l

import (
	"errors"
	"fmt"
)

// Packer errors.
var (
	ErrTooManyVertices  = errors.New("mesh exceeds 65535 unique vertices")
	ErrTooManyTriangles = errors.New("mesh exceeds 21845 triangles")
	ErrGroupOverflow    = errors.New("vertex group not encodable")
	ErrVertexOutOfRange = errors.New("corner references missing source vertex")
	ErrUVLayerMismatch  = errors.New("corner UV count does not match mesh UV layers")
)

// Limits imposed by the 16-bit index encoding.
const (
	MaxVertices  = 65535
	MaxTriangles = MaxVertices / 3
)

// Array names. The text side appends "_offset" to each.
const (
	ArrayIndex       = "index_array"
	ArrayPosition    = "vertex_co_array"
	ArrayNormal      = "vertex_normal_array"
	ArrayUV          = "uv_array"
	ArrayTangent     = "tangent_array"
	ArrayWeightTable = "weight_table"
	ArrayWeightCount = "weight_count_array"
	ArrayWeight      = "weight_array"
	ArrayGroupIndex  = "group_index_array"
)

// layerArray names the per-layer stream of the separate UV layout, e.g. "uv1_array".
func layerArray(prefix string, layer int) string {
	return fmt.Sprintf("%s%d_array", prefix, layer)
}

// WeightScheme selects how vertex group weights are encoded.
type WeightScheme int

const (
	// WeightsFixed writes weights_per_vertex (int16 group, int16 weight) pairs
	// per vertex, sorted by weight and padded with (-1, 0).
	WeightsFixed WeightScheme = iota
	// WeightsVariable writes a uint8 count per vertex followed by
	// concatenated uint16 weight and group index arrays.
	WeightsVariable
)

// String returns the config name of the scheme.
func (s WeightScheme) String() string {
	switch s {
	case WeightsFixed:
		return "fixed"
	case WeightsVariable:
		return "variable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseWeightScheme converts a config name to a WeightScheme.
func ParseWeightScheme(s string) (WeightScheme, error) {
	switch s {
	case "", "fixed":
		return WeightsFixed, nil
	case "variable":
		return WeightsVariable, nil
	}
	return 0, fmt.Errorf("unknown weight scheme %q", s)
}

// UVLayout selects how UV and tangent streams are laid out.
type UVLayout int

const (
	// UVInterleaved writes one stream of float[vertices][layers][n].
	UVInterleaved UVLayout = iota
	// UVSeparate writes one float[vertices][n] stream per layer.
	UVSeparate
)

// String returns the config name of the layout.
func (l UVLayout) String() string {
	switch l {
	case UVInterleaved:
		return "interleaved"
	case UVSeparate:
		return "separate"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// ParseUVLayout converts a config name to a UVLayout.
func ParseUVLayout(s string) (UVLayout, error) {
	switch s {
	case "", "interleaved":
		return UVInterleaved, nil
	case "separate":
		return UVSeparate, nil
	}
	return 0, fmt.Errorf("unknown uv layout %q", s)
}

// Options selects the encoding variant used by PackMesh.
type Options struct {
	Weights  WeightScheme
	UVLayout UVLayout
	Tangents bool // emit {tx, ty, tz, sign} per vertex per UV layer
}

// Corner is one triangle's reference to a source vertex.
type Corner struct {
	Vertex uint32       // Source vertex index
	Normal [3]float32   // Split normal of this corner
	UV     [][2]float32 // One entry per UV layer
}

// Triangle is a triangulated polygon.
type Triangle struct {
	Corners     [3]Corner
	SmoothGroup uint32
	Material    uint32
}

// GroupWeight is one vertex group assignment of a source vertex.
type GroupWeight struct {
	Group  int
	Weight float32
}

// GroupLookup returns the group assignments of a source vertex in
// original assignment order.
type GroupLookup func(vertex uint32) []GroupWeight

// MeshInput is the host's view of one mesh.
type MeshInput struct {
	Positions [][3]float32 // Indexed by source vertex
	Triangles []Triangle
	UVLayers  int
	Groups    GroupLookup // nil when no vertex belongs to a group
}

// Submesh is a contiguous run of the index array sharing one material.
type Submesh struct {
	Material      uint32
	FirstTriangle int
	TriangleCount int
}

// ArrayRef locates one encoded array.
type ArrayRef struct {
	Name   string
	Offset int64 // Byte offset from the start of the stream
	Size   int64 // Byte length
}

// Field returns the text-side field name holding the offset.
func (a ArrayRef) Field() string {
	return a.Name + "_offset"
}

// Warning reports a weight that was clamped into the encodable range.
type Warning struct {
	Vertex int // Output vertex index
	Group  int
	Weight float32
	Stored int // Fixed-point value actually written
}

func (w Warning) String() string {
	return fmt.Sprintf("vertex %d group %d: weight %g clamped to fixed-point %d",
		w.Vertex, w.Group, w.Weight, w.Stored)
}
