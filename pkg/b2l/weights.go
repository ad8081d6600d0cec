package b2l

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Fixed-point weight scales. The variable scheme stores 15 fractional bits
// unsigned, the fixed scheme 14 fractional bits signed.
const (
	VariableWeightScale = 32768
	FixedWeightScale    = 16384
)

// EncodeWeight converts w to round(w*scale) clamped to [0, limit].
// clamped is true when w was negative, NaN or above the representable range.
func EncodeWeight(w float32, scale float64, limit int) (v int, clamped bool) {
	if w < 0 || math.IsNaN(float64(w)) {
		return 0, true
	}
	f := math.Round(float64(w) * scale)
	if f > float64(limit) {
		return limit, true
	}
	return int(f), false
}

func (m *PackedMesh) warn(vertex int, g GroupWeight, stored int) {
	m.Warnings = append(m.Warnings, Warning{
		Vertex: vertex,
		Group:  g.Group,
		Weight: g.Weight,
		Stored: stored,
	})
}

// encodeFixedWeights writes WeightsPerVertex (group, weight) int16 pairs per
// vertex. Rows are stable-sorted by descending stored weight and padded with
// (-1, 0). Nothing is written when no vertex has a group.
func (m *PackedMesh) encodeFixedWeights() error {
	n := m.WeightsPerVertex
	if n == 0 {
		return nil
	}

	type slot struct{ group, weight int16 }
	table := make([]int16, 0, 2*n*len(m.Groups))
	row := make([]slot, 0, n)
	for v, groups := range m.Groups {
		row = row[:0]
		for _, g := range groups {
			if g.Group < 0 || g.Group > math.MaxInt16 {
				return fmt.Errorf("%w: vertex %d group %d", ErrGroupOverflow, v, g.Group)
			}
			w, clamped := EncodeWeight(g.Weight, FixedWeightScale, math.MaxInt16)
			if clamped {
				m.warn(v, g, w)
			}
			row = append(row, slot{int16(g.Group), int16(w)})
		}
		// Stored values, not raw weights: NaN has no order.
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].weight > row[j].weight
		})
		for _, s := range row {
			table = append(table, s.group, s.weight)
		}
		for i := len(row); i < n; i++ {
			table = append(table, -1, 0)
		}
	}

	m.array(ArrayWeightTable, func(b []byte) []byte {
		for _, x := range table {
			b = binary.LittleEndian.AppendUint16(b, uint16(x))
		}
		return b
	})
	return nil
}

// encodeVariableWeights writes a uint8 group count per vertex followed by the
// concatenated uint16 weights and group indices in assignment order.
// Nothing is written when no vertex has a group.
func (m *PackedMesh) encodeVariableWeights() error {
	if m.WeightsPerVertex == 0 {
		return nil
	}

	counts := make([]byte, 0, len(m.Groups))
	var weights, groups []uint16
	for v, gs := range m.Groups {
		if len(gs) > math.MaxUint8 {
			return fmt.Errorf("%w: vertex %d has %d groups", ErrGroupOverflow, v, len(gs))
		}
		counts = append(counts, uint8(len(gs)))
		for _, g := range gs {
			if g.Group < 0 || g.Group > math.MaxUint16 {
				return fmt.Errorf("%w: vertex %d group %d", ErrGroupOverflow, v, g.Group)
			}
			w, clamped := EncodeWeight(g.Weight, VariableWeightScale, math.MaxUint16)
			if clamped {
				m.warn(v, g, w)
			}
			weights = append(weights, uint16(w))
			groups = append(groups, uint16(g.Group))
		}
	}
	m.NumVertexWeights = len(weights)

	m.array(ArrayWeightCount, func(b []byte) []byte { return append(b, counts...) })
	m.array(ArrayWeight, func(b []byte) []byte { return appendUint16s(b, weights) })
	m.array(ArrayGroupIndex, func(b []byte) []byte { return appendUint16s(b, groups) })
	return nil
}
