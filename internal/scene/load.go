package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrUnknownRef    = errors.New("unknown reference")
	ErrBadParent     = errors.New("invalid parent")
	ErrBadFrame      = errors.New("frame value is not finite")
)

// Load reads and validates a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a snapshot. Unknown fields are rejected.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if s.Scene.FrameStep == 0 {
		s.Scene.FrameStep = 1
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every name is unique within its kind, that every
// reference resolves and that every frame value is finite. Names are compared
// in NFC, the form they are written in. All problems are reported together.
func (s *Snapshot) Validate() error {
	var err error

	seen := make(map[string]bool)
	unique := func(kind, name string) {
		key := norm.NFC.String(name)
		if seen[key] {
			err = multierr.Append(err, fmt.Errorf("%s %q: %w", kind, name, ErrDuplicateName))
		}
		seen[key] = true
	}
	for _, m := range s.Meshes {
		unique("mesh", m.Name)
	}
	clear(seen)
	for _, a := range s.Armatures {
		unique("armature", a.Name)
	}
	clear(seen)
	for _, o := range s.Objects {
		unique("object", o.Name)
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"frame_start", s.Scene.FrameStart},
		{"frame_end", s.Scene.FrameEnd},
		{"frame_step", s.Scene.FrameStep},
	} {
		if !finite(f.v) {
			err = multierr.Append(err, fmt.Errorf("scene %s %v: %w", f.name, f.v, ErrBadFrame))
		}
	}

	for i := range s.Objects {
		err = multierr.Append(err, s.validateObject(&s.Objects[i]))
	}
	return err
}

func (s *Snapshot) validateObject(o *Object) error {
	var err error
	switch o.Type {
	case TypeMesh:
		if s.Mesh(o.Data) == nil {
			err = multierr.Append(err, fmt.Errorf("object %q: mesh %q: %w", o.Name, o.Data, ErrUnknownRef))
		}
	case TypeArmature:
		if s.Armature(o.Data) == nil {
			err = multierr.Append(err, fmt.Errorf("object %q: armature %q: %w", o.Name, o.Data, ErrUnknownRef))
		}
	}

	if o.Armature != "" {
		a := s.Object(o.Armature)
		if a == nil || a.Type != TypeArmature {
			err = multierr.Append(err, fmt.Errorf("object %q: armature object %q: %w", o.Name, o.Armature, ErrUnknownRef))
		}
	}

	if o.Parent != "" {
		if o.Parent == o.Name {
			err = multierr.Append(err, fmt.Errorf("object %q: parented to itself: %w", o.Name, ErrBadParent))
		} else if s.Object(o.Parent) == nil {
			err = multierr.Append(err, fmt.Errorf("object %q: parent %q: %w", o.Name, o.Parent, ErrUnknownRef))
		}
	}
	for _, tr := range o.NLATracks {
		for _, st := range tr.Strips {
			if !finite(st.FrameStart) || !finite(st.FrameEnd) {
				err = multierr.Append(err, fmt.Errorf("object %q: strip %q frames %v..%v: %w",
					o.Name, st.Name, st.FrameStart, st.FrameEnd, ErrBadFrame))
			}
		}
	}

	switch o.ParentType {
	case ParentVertex:
		if len(o.ParentVertices) < 1 {
			err = multierr.Append(err, fmt.Errorf("object %q: vertex parent needs 1 vertex: %w", o.Name, ErrBadParent))
		}
	case ParentVertex3:
		if len(o.ParentVertices) < 3 {
			err = multierr.Append(err, fmt.Errorf("object %q: 3-vertex parent needs 3 vertices: %w", o.Name, ErrBadParent))
		}
	}
	return err
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
