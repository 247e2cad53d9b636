// Package demo builds the scene and painting session shared by the
// headless and interactive front ends of meshpaint.
package demo

import (
	gomath "math"

	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/internal/engine/scene"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Stage is the demo scene: a static cube and, optionally, a skinned
// two-bone cylinder standing next to it.
type Stage struct {
	Scene *scene.Scene
	Cube  *scene.Node
	Body  *scene.Node
	skin  *model.Skin
}

// bodyPivot is where the upper bone bends, in body-local space.
var bodyPivot = math.Vec3{Y: 0}

// NewStage builds the scene and reserves bakeLayer for skinned baking.
func NewStage(bakeLayer string, skinned bool) (*Stage, error) {
	sc := scene.New()
	if _, err := sc.Layers.Define(bakeLayer); err != nil {
		return nil, err
	}

	s := &Stage{Scene: sc}
	s.Cube = sc.AddStatic("cube", model.Cube(),
		math.TRS(math.Vec3{X: -0.9}, math.QuatFromEuler(math.Vec3{X: 20, Y: 35}), math.One))

	if skinned {
		mesh := model.Cylinder(32, 16)
		influences := model.RigidInfluences(mesh, func(v model.Vertex) int {
			if v.Position.Y > bodyPivot.Y {
				return 1
			}
			return 0
		})
		skin, err := model.NewSkin(mesh, influences, 2)
		if err != nil {
			return nil, err
		}
		s.skin = skin
		s.Body = sc.AddSkinned("body", skin,
			math.TRS(math.Vec3{X: 0.9}, math.QuatIdentity(), math.Vec3{X: 0.8, Y: 1.6, Z: 0.8}))
	}
	return s, nil
}

// Pose bends the upper half of the body by angle radians about Z.
func (s *Stage) Pose(angle float32) {
	if s.skin == nil {
		return
	}
	bend := math.Translate(bodyPivot).
		Mul(math.QuatFromAxisAngle(math.Vec3{Z: 1}, angle).ToMat4()).
		Mul(math.Translate(bodyPivot.Scale(-1)))
	s.skin.SetBone(1, bend)
}

// Drop destroys the body and prunes it from the scene. It reports whether
// there was a live body to drop.
func (s *Stage) Drop() bool {
	if s.Body == nil || !s.Body.Alive() {
		return false
	}
	s.Body.Destroy()
	s.Scene.Prune()
	return true
}

// Sway returns the bend angle for an idle animation at time t seconds.
func Sway(t float64) float32 {
	return float32(0.5 * gomath.Sin(t*1.5))
}
