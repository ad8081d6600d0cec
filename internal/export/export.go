// Package export writes a scene snapshot as a Lua table literal plus a
// binary blob referenced from it by byte offsets.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/b2l/internal/scene"
	"github.com/Faultbox/b2l/pkg/b2l"
	"github.com/Faultbox/b2l/pkg/luatext"
)

// Options controls an export.
type Options struct {
	Pack    b2l.Options
	Workers int  // Meshes packed concurrently, at least 1
	Strict  bool // Abort on the first mesh that cannot be packed
}

// DefaultOptions returns the canonical encoding with one worker per CPU.
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU()}
}

// MeshResult is a mesh as it was written.
type MeshResult struct {
	Name      string
	Materials []string // Slot names, indexed by Submesh.Material
	Packed    *b2l.PackedMesh
}

// Summary describes a finished export.
type Summary struct {
	Objects   int
	Meshes    int
	Armatures int
	Materials int
	Vertices  int
	Triangles int
	Warnings  int
	BlobSize  int64

	// Skipped aggregates the errors of meshes left out of the output.
	Skipped error

	Packed []MeshResult
}

// Exporter converts snapshots. It holds no per-export state and may be
// reused.
type Exporter struct {
	opts Options
	log  *zap.Logger
}

// New creates an Exporter. A nil logger discards output.
func New(opts Options, log *zap.Logger) *Exporter {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{opts: opts, log: log}
}

type packJob struct {
	mesh *b2l.PackedMesh
	err  error
	done chan struct{}
}

// startPacking packs every mesh on a bounded pool. Each job's done channel
// closes when its result is ready.
func (e *Exporter) startPacking(ctx context.Context, meshes []scene.Mesh) ([]*packJob, *sync.WaitGroup) {
	jobs := make([]*packJob, len(meshes))
	tasks := make(chan int, len(meshes))
	for i := range meshes {
		jobs[i] = &packJob{done: make(chan struct{})}
		tasks <- i
	}
	close(tasks)

	var wg sync.WaitGroup
	for w := 0; w < min(e.opts.Workers, len(meshes)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				j := jobs[i]
				if err := ctx.Err(); err != nil {
					j.err = err
				} else {
					j.mesh, j.err = b2l.PackMesh(meshes[i].Input(), e.opts.Pack)
				}
				close(j.done)
			}
		}()
	}
	return jobs, &wg
}

// Export writes s to lua and blob. Meshes that cannot be packed are logged
// and skipped unless Options.Strict is set. On error both outputs are
// incomplete and must be discarded.
func (e *Exporter) Export(ctx context.Context, s *scene.Snapshot, lua, blob io.Writer) (*Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	jobs, wg := e.startPacking(ctx, s.Meshes)
	defer wg.Wait()
	defer cancel()

	lw := luatext.NewWriter(lua)
	bw := b2l.NewBlobWriter(blob)
	sum := &Summary{Materials: len(s.Materials)}

	lw.Begin()
	if err := e.writeScene(ctx, lw, bw, s, sum); err != nil {
		return nil, err
	}
	if err := e.writeMeshes(ctx, lw, bw, s, jobs, sum); err != nil {
		return nil, err
	}
	if err := e.writeArmatures(ctx, lw, bw, s, sum); err != nil {
		return nil, err
	}
	lw.Open("materials")
	for _, name := range s.Materials {
		lw.Item(name)
	}
	lw.Close()
	lw.End()

	if err := lw.Err(); err != nil {
		return nil, fmt.Errorf("writing lua: %w", err)
	}
	sum.BlobSize = bw.Offset()

	e.log.Info("export finished",
		zap.Int("objects", sum.Objects),
		zap.Int("meshes", sum.Meshes),
		zap.Int("armatures", sum.Armatures),
		zap.Int("vertices", sum.Vertices),
		zap.Int("triangles", sum.Triangles),
		zap.Int64("blob_bytes", sum.BlobSize),
		zap.Int("skipped", len(multierr.Errors(sum.Skipped))),
	)
	return sum, nil
}

func (e *Exporter) writeMeshes(ctx context.Context, lw *luatext.Writer, bw *b2l.BlobWriter, s *scene.Snapshot, jobs []*packJob, sum *Summary) error {
	lw.Open("meshes")
	for i := range s.Meshes {
		src := &s.Meshes[i]
		log := e.log.With(zap.String("mesh", src.Name))

		j := jobs[i]
		select {
		case <-j.done:
		case <-ctx.Done():
			return ctx.Err()
		}

		if j.err != nil {
			if errors.Is(j.err, context.Canceled) || errors.Is(j.err, context.DeadlineExceeded) {
				return j.err
			}
			err := fmt.Errorf("mesh %q: %w", src.Name, j.err)
			if e.opts.Strict {
				return err
			}
			log.Warn("skipping mesh", zap.Error(j.err))
			sum.Skipped = multierr.Append(sum.Skipped, err)
			continue
		}

		m := j.mesh
		if m.Empty() {
			log.Debug("mesh has no triangles, nothing written")
			continue
		}
		for _, w := range m.Warnings {
			log.Warn("weight clamped", zap.Stringer("weight", w))
		}

		refs, err := m.Flush(bw)
		if err != nil {
			return fmt.Errorf("mesh %q: %w", src.Name, err)
		}
		writeMesh(lw, src, m, refs)
		if err := lw.Err(); err != nil {
			return fmt.Errorf("writing lua: %w", err)
		}

		log.Debug("packed mesh",
			zap.Int("vertices", m.VertexCount()),
			zap.Int("triangles", m.TriangleCount()),
			zap.Int("submeshes", len(m.Submeshes)),
		)
		sum.Meshes++
		sum.Vertices += m.VertexCount()
		sum.Triangles += m.TriangleCount()
		sum.Warnings += len(m.Warnings)
		sum.Packed = append(sum.Packed, MeshResult{Name: src.Name, Materials: src.Materials, Packed: m})
	}
	lw.Close()
	return nil
}

func writeMesh(lw *luatext.Writer, src *scene.Mesh, m *b2l.PackedMesh, refs []b2l.ArrayRef) {
	lw.Open(src.Name)
	lw.Int("num_triangles", int64(m.TriangleCount()))
	lw.Int("num_verticies", int64(m.VertexCount()))
	lw.Strings("uv_layers", src.UVLayers)
	switch m.Options.Weights {
	case b2l.WeightsFixed:
		if m.WeightsPerVertex > 0 {
			lw.Int("weights_per_vertex", int64(m.WeightsPerVertex))
		}
	case b2l.WeightsVariable:
		lw.Int("num_vertex_weights", int64(m.NumVertexWeights))
	}

	lw.Open("submeshes")
	for _, sm := range m.Submeshes {
		lw.OpenItem()
		lw.String("material_name", src.MaterialName(sm.Material))
		lw.Int("triangle_no", int64(sm.FirstTriangle))
		lw.Int("triangle_count", int64(sm.TriangleCount))
		lw.Close()
	}
	lw.Close()

	for _, r := range refs {
		lw.Int(r.Field(), r.Offset)
	}
	lw.Close()
}
