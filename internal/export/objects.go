package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/b2l/internal/scene"
	"github.com/Faultbox/b2l/pkg/b2l"
	"github.com/Faultbox/b2l/pkg/luatext"
	"github.com/Faultbox/b2l/pkg/math"
)

func (e *Exporter) writeScene(ctx context.Context, lw *luatext.Writer, bw *b2l.BlobWriter, s *scene.Snapshot, sum *Summary) error {
	lw.Open("scene")
	lw.Float("frame_start", s.Scene.FrameStart)
	lw.Float("frame_end", s.Scene.FrameEnd)
	lw.Float("frame_step", s.Scene.FrameStep)

	lw.Open("objects")
	for i := range s.Objects {
		if err := ctx.Err(); err != nil {
			return err
		}
		o := &s.Objects[i]
		if err := e.writeObject(lw, bw, s, o); err != nil {
			return fmt.Errorf("object %q: %w", o.Name, err)
		}
		sum.Objects++
	}
	lw.Close()
	lw.Close()
	return nil
}

func (e *Exporter) writeObject(lw *luatext.Writer, bw *b2l.BlobWriter, s *scene.Snapshot, o *scene.Object) error {
	frames := s.FrameCount(o)

	xforms := make([]float32, 0, 16*frames)
	for f := 0; f < frames; f++ {
		xforms = math.AppendFloats(xforms, o.LocalMatrix(f))
	}
	xformOff, err := bw.WriteFloat32s(xforms)
	if err != nil {
		return err
	}

	var groupOff int64
	if len(o.VertexGroups) > 0 {
		groups := make([]float32, 0, 16*frames*len(o.VertexGroups))
		for f := 0; f < frames; f++ {
			for _, g := range o.VertexGroups {
				groups = math.AppendFloats(groups, s.GroupMatrix(o, g, f))
			}
		}
		if groupOff, err = bw.WriteFloat32s(groups); err != nil {
			return err
		}
	}

	lw.Open(o.Name)
	if o.Parent != "" {
		lw.String("parent", o.Parent)
		lw.String("parent_type", o.ParentType)
		switch o.ParentType {
		case scene.ParentBone:
			lw.String("parent_bone", o.ParentBone)
		case scene.ParentVertex:
			if len(o.ParentVertices) > 0 {
				lw.Int("parent_vertex", int64(o.ParentVertices[0]))
			}
		case scene.ParentVertex3:
			if len(o.ParentVertices) >= 3 {
				lw.Ints("parent_vertices", o.ParentVertices[:3])
			}
		}
	}
	lw.String("type", o.Type)
	if o.Data != "" {
		lw.String("data", o.Data)
	}
	lw.Strings("vertex_groups", o.VertexGroups)
	if o.Armature != "" {
		lw.String("armature_deform", o.Armature)
	}
	lw.Bool("animated", s.IsAnimated(o))
	lw.Int("num_frames", int64(frames))
	writeNLA(lw, o.NLATracks)
	lw.Int("object_transform_array_offset", xformOff)
	if len(o.VertexGroups) > 0 {
		lw.Int("vertex_group_transform_array_offset", groupOff)
	}
	lw.Close()

	e.log.Debug("wrote object",
		zap.String("object", o.Name),
		zap.Int("frames", frames),
		zap.Int("vertex_groups", len(o.VertexGroups)),
	)
	return nil
}

// writeNLA writes unmuted tracks and their unmuted strips.
func writeNLA(lw *luatext.Writer, tracks []scene.NLATrack) {
	lw.Open("nla_tracks")
	for _, t := range tracks {
		if t.Mute {
			continue
		}
		lw.OpenItem()
		lw.String("name", t.Name)
		lw.Open("strips")
		for _, st := range t.Strips {
			if st.Mute {
				continue
			}
			lw.OpenItem()
			lw.String("name", st.Name)
			lw.String("action", st.Action)
			lw.Float("frame_start", st.FrameStart)
			lw.Float("frame_end", st.FrameEnd)
			lw.Close()
		}
		lw.Close()
		lw.Close()
	}
	lw.Close()
}

func (e *Exporter) writeArmatures(ctx context.Context, lw *luatext.Writer, bw *b2l.BlobWriter, s *scene.Snapshot, sum *Summary) error {
	lw.Open("armatures")
	for i := range s.Armatures {
		if err := ctx.Err(); err != nil {
			return err
		}
		a := &s.Armatures[i]

		tails := make([]float32, 0, 3*len(a.Bones))
		rest := make([]float32, 0, 16*len(a.Bones))
		for _, b := range a.Bones {
			tails = append(tails, b.Tail[:]...)
			rest = math.AppendFloats(rest, math.Mat4(b.Matrix))
		}
		tailOff, err := bw.WriteFloat32s(tails)
		if err != nil {
			return fmt.Errorf("armature %q: %w", a.Name, err)
		}
		restOff, err := bw.WriteFloat32s(rest)
		if err != nil {
			return fmt.Errorf("armature %q: %w", a.Name, err)
		}

		lw.Open(a.Name)
		for _, b := range a.Bones {
			lw.OpenItem()
			lw.String("name", b.Name)
			if b.Parent != "" {
				lw.String("parent", b.Parent)
			}
			lw.Close()
		}
		lw.Int("tail_array_offset", tailOff)
		lw.Int("transform_array_offset", restOff)
		lw.Close()
		sum.Armatures++
	}
	lw.Close()
	return nil
}
