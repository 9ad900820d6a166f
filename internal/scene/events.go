package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/blastfield/internal/core/anchors"
	"github.com/zeusync/blastfield/internal/core/systems/physics"
)

// Event types published on the scene bus.
const (
	EventSurfaceUpserted = "scene.anchor.surface"
	EventSurfaceRemoved  = "scene.anchor.removed"
	EventBodySpawned     = "scene.body.spawned"
	EventBodyEvicted     = "scene.body.evicted"
	EventExplosion       = "scene.explosion"
	EventLifecycle       = "scene.lifecycle"
)

type SurfaceUpserted struct {
	Surface anchors.Surface
	Created bool
}

type SurfaceRemoved struct {
	AnchorID anchors.AnchorID
}

type BodySpawned struct {
	Descriptor physics.BodyDescriptor
}

type BodyEvicted struct {
	Body physics.Body
}

type Explosion struct {
	Origin   mgl64.Vec3
	Impulses map[physics.BodyID]mgl64.Vec3
}

type LifecycleChanged struct {
	From       anchors.Lifecycle
	To         anchors.Lifecycle
	Transition anchors.Transition
	Cause      error
}
