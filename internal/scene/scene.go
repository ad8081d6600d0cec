// Package scene holds the scene snapshot exported by the host modeling
// application: objects with sampled transforms, meshes as polygon lists
// with per-loop attributes, armatures and material names.
package scene

import (
	"github.com/Faultbox/b2l/pkg/math"
)

// Object types that reference data blocks.
const (
	TypeMesh     = "MESH"
	TypeArmature = "ARMATURE"
)

// Parent types with extra fields.
const (
	ParentBone    = "BONE"
	ParentVertex  = "VERTEX"
	ParentVertex3 = "VERTEX_3"
)

// Snapshot is a complete scene handed over by the host.
type Snapshot struct {
	Scene     Settings   `yaml:"scene"`
	Materials []string   `yaml:"materials"`
	Objects   []Object   `yaml:"objects"`
	Meshes    []Mesh     `yaml:"meshes"`
	Armatures []Armature `yaml:"armatures"`
}

// Settings holds the animation range of the scene.
type Settings struct {
	FrameStart float64 `yaml:"frame_start"`
	FrameEnd   float64 `yaml:"frame_end"`
	FrameStep  float64 `yaml:"frame_step"`
}

// Object is a scene graph node.
type Object struct {
	Name           string   `yaml:"name"`
	Type           string   `yaml:"type"`
	Data           string   `yaml:"data"`
	Parent         string   `yaml:"parent"`
	ParentType     string   `yaml:"parent_type"`
	ParentBone     string   `yaml:"parent_bone"`
	ParentVertices []int    `yaml:"parent_vertices"`
	VertexGroups   []string `yaml:"vertex_groups"`

	// Armature names the armature object deforming this one, if any.
	Armature string `yaml:"armature"`

	Animated bool        `yaml:"animated"`
	Frames   []Transform `yaml:"frames"`
	// Pose holds one bone-name to pose-matrix map per frame (armature objects).
	Pose      []map[string][16]float32 `yaml:"pose_frames"`
	NLATracks []NLATrack               `yaml:"nla_tracks"`
}

// Transform is an object-local transform sample, either a column-major
// matrix or a location/rotation/scale triple.
type Transform struct {
	Matrix   *[16]float32 `yaml:"matrix,omitempty"`
	Location [3]float32   `yaml:"location"`
	Rotation *[4]float32  `yaml:"rotation,omitempty"` // x, y, z, w
	Scale    *[3]float32  `yaml:"scale,omitempty"`
}

// Mat4 returns the transform as a matrix.
func (t Transform) Mat4() math.Mat4 {
	if t.Matrix != nil {
		return math.Mat4(*t.Matrix)
	}
	rot := math.QuatIdentity()
	if t.Rotation != nil {
		rot = math.QuatFromArray(*t.Rotation)
	}
	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	if t.Scale != nil {
		scale = math.Vec3FromArray(*t.Scale)
	}
	return math.Compose(math.Vec3FromArray(t.Location), rot, scale)
}

// NLATrack is a non-linear animation track.
type NLATrack struct {
	Name   string     `yaml:"name"`
	Mute   bool       `yaml:"mute"`
	Strips []NLAStrip `yaml:"strips"`
}

// NLAStrip places an action on a track.
type NLAStrip struct {
	Name       string  `yaml:"name"`
	Action     string  `yaml:"action"`
	FrameStart float64 `yaml:"frame_start"`
	FrameEnd   float64 `yaml:"frame_end"`
	Mute       bool    `yaml:"mute"`
}

// Armature is a bone hierarchy in rest pose.
type Armature struct {
	Name  string `yaml:"name"`
	Bones []Bone `yaml:"bones"`
}

// Bone is one armature bone. Matrix is the rest transform in armature
// space; the bone head is at its origin.
type Bone struct {
	Name   string      `yaml:"name"`
	Parent string      `yaml:"parent"`
	Tail   [3]float32  `yaml:"tail"`
	Matrix [16]float32 `yaml:"matrix"`
}

// Bone returns the named bone or nil.
func (a *Armature) Bone(name string) *Bone {
	for i := range a.Bones {
		if a.Bones[i].Name == name {
			return &a.Bones[i]
		}
	}
	return nil
}

// Object returns the named object or nil.
func (s *Snapshot) Object(name string) *Object {
	for i := range s.Objects {
		if s.Objects[i].Name == name {
			return &s.Objects[i]
		}
	}
	return nil
}

// Mesh returns the named mesh or nil.
func (s *Snapshot) Mesh(name string) *Mesh {
	for i := range s.Meshes {
		if s.Meshes[i].Name == name {
			return &s.Meshes[i]
		}
	}
	return nil
}

// Armature returns the named armature or nil.
func (s *Snapshot) Armature(name string) *Armature {
	for i := range s.Armatures {
		if s.Armatures[i].Name == name {
			return &s.Armatures[i]
		}
	}
	return nil
}

// Stats summarises a snapshot.
type Stats struct {
	Objects   int
	Meshes    int
	Polygons  int
	Loops     int
	Vertices  int
	Armatures int
	Bones     int
	Materials int
}

// Stats counts the snapshot's contents.
func (s *Snapshot) Stats() Stats {
	st := Stats{
		Objects:   len(s.Objects),
		Meshes:    len(s.Meshes),
		Armatures: len(s.Armatures),
		Materials: len(s.Materials),
	}
	for _, m := range s.Meshes {
		st.Polygons += len(m.Polygons)
		st.Vertices += len(m.Vertices)
		for _, p := range m.Polygons {
			st.Loops += len(p.Loops)
		}
	}
	for _, a := range s.Armatures {
		st.Bones += len(a.Bones)
	}
	return st
}
