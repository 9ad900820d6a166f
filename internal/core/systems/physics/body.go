package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// BodyID identifies a dynamic body for the lifetime of a scene.
type BodyID string

// NewBodyID returns a random body identifier.
func NewBodyID() BodyID { return BodyID(uuid.NewString()) }

// Body is the minimal proxy of a dynamic rigid body owned by the host physics engine.
// Mass is carried along but does not take part in the impulse formula.
type Body struct {
	ID       BodyID
	Position mgl64.Vec3
	Mass     float64
}

// ShapeType enumerates the collision shapes a body descriptor can carry.
type ShapeType uint8

const (
	ShapeBox ShapeType = iota
	ShapeSphere
)

func (s ShapeType) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Shape describes body geometry. Size is the box edge length or the sphere radius.
type Shape struct {
	Type ShapeType
	Size float64
}

// BodyDescriptor is what the host physics engine needs to create a dynamic body.
type BodyDescriptor struct {
	ID       BodyID
	Shape    Shape
	Mass     float64
	Position mgl64.Vec3
}

// Body returns the proxy tracked for the described body.
func (d BodyDescriptor) Body() Body {
	return Body{ID: d.ID, Position: d.Position, Mass: d.Mass}
}

// SpawnSpec holds the parameters used to turn a tap point into a cube descriptor.
type SpawnSpec struct {
	CubeSize   float64
	Mass       float64
	DropHeight float64
}

// DefaultSpawnSpec is a unit cube of mass 2 released half a unit above the hit point.
func DefaultSpawnSpec() SpawnSpec {
	return SpawnSpec{CubeSize: 1, Mass: 2, DropHeight: 0.5}
}

// Cube builds a descriptor for a new cube dropped above hit.
func (s SpawnSpec) Cube(hit mgl64.Vec3) BodyDescriptor {
	return BodyDescriptor{
		ID:       NewBodyID(),
		Shape:    Shape{Type: ShapeBox, Size: s.CubeSize},
		Mass:     s.Mass,
		Position: hit.Add(mgl64.Vec3{0, s.DropHeight, 0}),
	}
}
