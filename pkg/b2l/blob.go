package b2l

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrTruncatedBlob is returned when an array extends past the end of a blob.
var ErrTruncatedBlob = errors.New("truncated b2l blob")

// BlobWriter tracks the write cursor of the shared binary stream.
// Offsets are only meaningful relative to a single writer.
type BlobWriter struct {
	w   io.Writer
	off int64
}

// NewBlobWriter returns a writer whose cursor starts at zero.
func NewBlobWriter(w io.Writer) *BlobWriter {
	return &BlobWriter{w: w}
}

// Offset returns the number of bytes written so far.
func (b *BlobWriter) Offset() int64 {
	return b.off
}

// Write writes p and advances the cursor by the bytes actually written.
func (b *BlobWriter) Write(p []byte) (int, error) {
	n, err := b.w.Write(p)
	b.off += int64(n)
	return n, err
}

// WriteFloat32s writes data as little-endian float32 and returns the
// offset at which it starts.
func (b *BlobWriter) WriteFloat32s(data []float32) (int64, error) {
	off := b.off
	buf := make([]byte, 0, 4*len(data))
	for _, f := range data {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	if _, err := b.Write(buf); err != nil {
		return off, err
	}
	return off, nil
}

// WeightSlot is one decoded entry of the fixed-width weight table.
type WeightSlot struct {
	Group  int16
	Weight int16
}

func span(blob []byte, offset int64, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset+int64(size) > int64(len(blob)) {
		return nil, fmt.Errorf("%w: %d bytes at offset %d, blob is %d bytes",
			ErrTruncatedBlob, size, offset, len(blob))
	}
	return blob[offset : offset+int64(size)], nil
}

// DecodeUint8s reads count bytes at offset.
func DecodeUint8s(blob []byte, offset int64, count int) ([]uint8, error) {
	data, err := span(blob, offset, count)
	if err != nil {
		return nil, err
	}
	return append([]uint8(nil), data...), nil
}

// DecodeUint16s reads count little-endian uint16 values at offset.
func DecodeUint16s(blob []byte, offset int64, count int) ([]uint16, error) {
	data, err := span(blob, offset, 2*count)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(data[2*i:])
	}
	return out, nil
}

// DecodeFloat32s reads count little-endian float32 values at offset.
func DecodeFloat32s(blob []byte, offset int64, count int) ([]float32, error) {
	data, err := span(blob, offset, 4*count)
	if err != nil {
		return nil, err
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out, nil
}

// DecodeWeightTable reads a fixed-width weight table of vertices rows with
// perVertex slots each.
func DecodeWeightTable(blob []byte, offset int64, vertices, perVertex int) ([][]WeightSlot, error) {
	raw, err := DecodeUint16s(blob, offset, 2*vertices*perVertex)
	if err != nil {
		return nil, err
	}
	rows := make([][]WeightSlot, vertices)
	for v := range rows {
		row := make([]WeightSlot, perVertex)
		for i := range row {
			k := 2 * (v*perVertex + i)
			row[i] = WeightSlot{Group: int16(raw[k]), Weight: int16(raw[k+1])}
		}
		rows[v] = row
	}
	return rows, nil
}
