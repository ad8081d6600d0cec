package scene

import (
	"github.com/Faultbox/b2l/pkg/math"
)

// FrameCount returns how many transform samples are exported for o. Static
// objects have one. Animated objects have as many as the longest of their
// own frames and their deforming armature's pose frames.
func (s *Snapshot) FrameCount(o *Object) int {
	if !s.IsAnimated(o) {
		return 1
	}
	n := max(len(o.Frames), 1)
	if a := s.deformer(o); a != nil {
		n = max(n, len(a.Pose))
	}
	return n
}

// IsAnimated reports whether o or its deforming armature is animated.
func (s *Snapshot) IsAnimated(o *Object) bool {
	if o.Animated {
		return true
	}
	a := s.deformer(o)
	return a != nil && a.Animated
}

func (s *Snapshot) deformer(o *Object) *Object {
	if o.Armature == "" {
		return nil
	}
	a := s.Object(o.Armature)
	if a == nil || a.Type != TypeArmature {
		return nil
	}
	return a
}

// LocalMatrix returns the object-local transform at frame f. Missing frames
// repeat the last sample; an object without samples is at the identity.
func (o *Object) LocalMatrix(f int) math.Mat4 {
	if len(o.Frames) == 0 {
		return math.Identity()
	}
	return o.Frames[min(f, len(o.Frames)-1)].Mat4()
}

// PoseMatrix returns the pose transform of bone at frame f.
func (o *Object) PoseMatrix(bone string, f int) (math.Mat4, bool) {
	if len(o.Pose) == 0 {
		return math.Mat4{}, false
	}
	m, ok := o.Pose[min(f, len(o.Pose)-1)][bone]
	return math.Mat4(m), ok
}

// GroupMatrix returns the deformation of vertex group name at frame f:
// inv(local) * pose * inv(rest) * local when the deforming armature has a
// posed bone of that name, and the identity otherwise.
func (s *Snapshot) GroupMatrix(o *Object, name string, f int) math.Mat4 {
	a := s.deformer(o)
	if a == nil {
		return math.Identity()
	}
	arm := s.Armature(a.Data)
	if arm == nil {
		return math.Identity()
	}
	bone := arm.Bone(name)
	if bone == nil {
		return math.Identity()
	}
	pose, ok := a.PoseMatrix(name, f)
	if !ok {
		return math.Identity()
	}
	rest, ok := math.Mat4(bone.Matrix).TryInverse()
	if !ok {
		return math.Identity()
	}
	local := o.LocalMatrix(f)
	invLocal, ok := local.TryInverse()
	if !ok {
		return math.Identity()
	}
	return invLocal.Mul(pose).Mul(rest).Mul(local)
}
