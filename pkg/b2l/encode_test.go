package b2l

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncode_OffsetsContiguous(t *testing.T) {
	in := makeWeighted()
	in.UVLayers = 1
	for c := range in.Triangles[0].Corners {
		in.Triangles[0].Corners[c].UV = [][2]float32{{float32(c), 0}}
	}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "fixed interleaved",
			opts: Options{Weights: WeightsFixed},
			want: []string{ArrayIndex, ArrayPosition, ArrayNormal, ArrayUV, ArrayWeightTable},
		},
		{
			name: "variable separate with tangents",
			opts: Options{Weights: WeightsVariable, UVLayout: UVSeparate, Tangents: true},
			want: []string{ArrayIndex, ArrayPosition, ArrayNormal, "uv0_array", "tangent0_array",
				ArrayWeightCount, ArrayWeight, ArrayGroupIndex},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := PackMesh(in, tt.opts)
			if err != nil {
				t.Fatalf("PackMesh: %v", err)
			}
			if len(m.Arrays) != len(tt.want) {
				t.Fatalf("got %d arrays, want %d: %+v", len(m.Arrays), len(tt.want), m.Arrays)
			}

			var next int64
			for i, a := range m.Arrays {
				if a.Name != tt.want[i] {
					t.Errorf("array %d: got %s, want %s", i, a.Name, tt.want[i])
				}
				if a.Offset != next {
					t.Errorf("%s at offset %d, want %d", a.Name, a.Offset, next)
				}
				if a.Size <= 0 {
					t.Errorf("%s has size %d", a.Name, a.Size)
				}
				next = a.Offset + a.Size
			}
			if next != int64(len(m.Bytes())) {
				t.Errorf("arrays cover %d bytes, buffer is %d", next, len(m.Bytes()))
			}
		})
	}
}

func TestEncode_Sizes(t *testing.T) {
	m, err := PackMesh(makeQuad(), Options{})
	if err != nil {
		t.Fatalf("PackMesh: %v", err)
	}

	want := map[string]int64{
		ArrayIndex:    6 * 2,
		ArrayPosition: 4 * 12,
		ArrayNormal:   4 * 12,
		ArrayUV:       4 * 8,
	}
	for name, size := range want {
		a, ok := m.Array(name)
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if a.Size != size {
			t.Errorf("%s: got %d bytes, want %d", name, a.Size, size)
		}
	}
}

func TestEncode_LittleEndianIndices(t *testing.T) {
	m, err := PackMesh(makeQuad(), Options{})
	if err != nil {
		t.Fatalf("PackMesh: %v", err)
	}
	want := []byte{0, 0, 1, 0, 2, 0, 0, 0, 2, 0, 3, 0}
	if got := m.Bytes()[:12]; !bytes.Equal(got, want) {
		t.Errorf("index bytes = %v, want %v", got, want)
	}
}

func TestEncode_InterleavedUVs(t *testing.T) {
	in := &MeshInput{
		Positions: make([][3]float32, 3),
		UVLayers:  2,
		Triangles: []Triangle{{Corners: [3]Corner{
			corner(0, 1, 2, 3, 4),
			corner(1, 5, 6, 7, 8),
			corner(2, 9, 10, 11, 12),
		}}},
	}

	m, err := PackMesh(in, Options{UVLayout: UVInterleaved})
	if err != nil {
		t.Fatalf("PackMesh: %v", err)
	}
	ref, _ := m.Array(ArrayUV)
	got, err := DecodeFloat32s(m.Bytes(), ref.Offset, 12)
	if err != nil {
		t.Fatalf("DecodeFloat32s: %v", err)
	}
	for i, f := range got {
		if f != float32(i+1) {
			t.Errorf("uv float %d: got %v, want %v", i, f, i+1)
		}
	}

	sep, err := PackMesh(in, Options{UVLayout: UVSeparate})
	if err != nil {
		t.Fatalf("PackMesh separate: %v", err)
	}
	ref1, ok := sep.Array("uv1_array")
	if !ok {
		t.Fatal("missing uv1_array")
	}
	layer1, _ := DecodeFloat32s(sep.Bytes(), ref1.Offset, 6)
	want1 := []float32{3, 4, 7, 8, 11, 12}
	for i := range want1 {
		if layer1[i] != want1[i] {
			t.Errorf("layer 1 float %d: got %v, want %v", i, layer1[i], want1[i])
		}
	}
}

type failingWriter struct {
	limit int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, errDiskFull
	}
	w.limit -= len(p)
	return len(p), nil
}

func TestFlush_RebasesOffsets(t *testing.T) {
	quad, err := PackMesh(makeQuad(), Options{})
	if err != nil {
		t.Fatalf("PackMesh quad: %v", err)
	}
	cube, err := PackMesh(makeCube(), Options{})
	if err != nil {
		t.Fatalf("PackMesh cube: %v", err)
	}

	var buf bytes.Buffer
	w := NewBlobWriter(&buf)
	if _, err := w.Write([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	quadRefs, err := quad.Flush(w)
	if err != nil {
		t.Fatalf("Flush quad: %v", err)
	}
	cubeRefs, err := cube.Flush(w)
	if err != nil {
		t.Fatalf("Flush cube: %v", err)
	}

	if quadRefs[0].Offset != 3 {
		t.Errorf("first quad array at %d, want 3", quadRefs[0].Offset)
	}
	last := quadRefs[len(quadRefs)-1]
	if cubeRefs[0].Offset != last.Offset+last.Size {
		t.Errorf("cube starts at %d, want %d", cubeRefs[0].Offset, last.Offset+last.Size)
	}
	for i, ref := range cubeRefs {
		local := cube.Arrays[i]
		got := buf.Bytes()[ref.Offset : ref.Offset+ref.Size]
		if !bytes.Equal(got, cube.Bytes()[local.Offset:local.Offset+local.Size]) {
			t.Errorf("%s bytes differ after flush", ref.Name)
		}
	}
	if w.Offset() != int64(buf.Len()) {
		t.Errorf("cursor %d, buffer %d", w.Offset(), buf.Len())
	}
}

func TestFlush_WriteError(t *testing.T) {
	m, err := PackMesh(makeQuad(), Options{})
	if err != nil {
		t.Fatalf("PackMesh: %v", err)
	}
	w := NewBlobWriter(&failingWriter{limit: 20})
	if _, err := m.Flush(w); !errors.Is(err, errDiskFull) {
		t.Errorf("expected write error, got %v", err)
	}
}

func TestBlobWriter_WriteFloat32s(t *testing.T) {
	var buf bytes.Buffer
	w := NewBlobWriter(&buf)
	w.Write([]byte{0xff})

	off, err := w.WriteFloat32s([]float32{1, -2})
	if err != nil {
		t.Fatalf("WriteFloat32s: %v", err)
	}
	if off != 1 {
		t.Errorf("offset = %d, want 1", off)
	}
	got, err := DecodeFloat32s(buf.Bytes(), off, 2)
	if err != nil {
		t.Fatalf("DecodeFloat32s: %v", err)
	}
	if got[0] != 1 || got[1] != -2 {
		t.Errorf("decoded %v", got)
	}
}

func TestDecode_Truncated(t *testing.T) {
	blob := make([]byte, 10)
	if _, err := DecodeUint16s(blob, 8, 2); !errors.Is(err, ErrTruncatedBlob) {
		t.Errorf("expected ErrTruncatedBlob, got %v", err)
	}
	if _, err := DecodeFloat32s(blob, -1, 1); !errors.Is(err, ErrTruncatedBlob) {
		t.Errorf("expected ErrTruncatedBlob for negative offset, got %v", err)
	}
	if _, err := DecodeWeightTable(blob, 0, 2, 2); !errors.Is(err, ErrTruncatedBlob) {
		t.Errorf("expected ErrTruncatedBlob, got %v", err)
	}
}
