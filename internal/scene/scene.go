package scene

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/blastfield/internal/config"
	"github.com/zeusync/blastfield/internal/core/anchors"
	"github.com/zeusync/blastfield/internal/core/events/bus"
	"github.com/zeusync/blastfield/internal/core/models"
	"github.com/zeusync/blastfield/internal/core/observability/log"
	"github.com/zeusync/blastfield/internal/core/systems/physics"
)

// Physics is the host physics engine as seen from the scene.
type Physics interface {
	UpsertSurface(s anchors.Surface) error
	RemoveSurface(id anchors.AnchorID) error
	AddBody(d physics.BodyDescriptor) error
	RemoveBody(id physics.BodyID) error
	// ApplyImpulses applies each vector as an instantaneous velocity change.
	ApplyImpulses(impulses map[physics.BodyID]mgl64.Vec3) error
}

// Scene is the world context of one AR session: tracked bodies, plane surfaces
// and lifecycle state. A Scene is owned by a single goroutine.
type Scene struct {
	field    *physics.RadialImpulseField
	spawn    physics.SpawnSpec
	registry *models.BodyRegistry
	surfaces map[anchors.AnchorID]anchors.Surface
	state    anchors.Lifecycle

	resetOnInterruption bool

	physics  Physics
	observer anchors.SessionObserver
	events   bus.EventBus
	source   string
	logger   log.Log
}

type Option func(*Scene)

func WithLogger(logger log.Log) Option {
	return func(s *Scene) { s.logger = logger }
}

// WithEventBus publishes scene events on b instead of a private bus.
func WithEventBus(b bus.EventBus) Option {
	return func(s *Scene) { s.events = b }
}

// WithSource sets the Source of published events.
func WithSource(source string) Option {
	return func(s *Scene) { s.source = source }
}

// New builds a paused scene. cfg must be valid.
func New(cfg config.Config, engine Physics, observer anchors.SessionObserver, opts ...Option) (*Scene, error) {
	if engine == nil {
		return nil, ErrPhysicsRequired
	}
	if observer == nil {
		return nil, ErrObserverRequired
	}
	registry, err := models.NewBodyRegistry(cfg.RegistryConfig())
	if err != nil {
		return nil, fmt.Errorf("body registry: %w", err)
	}

	s := &Scene{
		field:               cfg.ImpulseField(),
		spawn:               cfg.SpawnSpec(),
		registry:            registry,
		surfaces:            make(map[anchors.AnchorID]anchors.Surface),
		state:               anchors.LifecyclePaused,
		resetOnInterruption: cfg.Session.ResetOnInterruption,
		physics:             engine,
		observer:            observer,
		source:              "scene",
		logger:              log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = bus.New()
	}
	s.logger = s.logger.With(log.String("component", "scene"), log.String("source", s.source))
	return s, nil
}

func (s *Scene) State() anchors.Lifecycle { return s.state }

func (s *Scene) Events() bus.EventBus { return s.events }

func (s *Scene) Field() *physics.RadialImpulseField { return s.field }

// Bodies returns the tracked bodies in spawn order.
func (s *Scene) Bodies() []physics.Body { return s.registry.Bodies() }

// Surfaces returns the current surfaces ordered by anchor id.
func (s *Scene) Surfaces() []anchors.Surface {
	out := make([]anchors.Surface, 0, len(s.surfaces))
	for _, surface := range s.surfaces {
		out = append(out, surface)
	}
	slices.SortFunc(out, func(a, b anchors.Surface) int { return cmp.Compare(a.AnchorID, b.AnchorID) })
	return out
}

// AnchorAdded reacts to a new anchor. Only plane anchors produce a surface.
func (s *Scene) AnchorAdded(a anchors.Anchor) error {
	return s.upsertAnchor(a, "new plane anchor found")
}

// AnchorUpdated resizes the surface of a plane anchor.
func (s *Scene) AnchorUpdated(a anchors.Anchor) error {
	return s.upsertAnchor(a, "plane anchor updated")
}

func (s *Scene) upsertAnchor(a anchors.Anchor, msg string) error {
	surface, ok := a.Surface()
	if !ok {
		s.logger.Debug("ignoring anchor", log.String("anchor", string(a.ID)), log.String("kind", a.Kind.String()))
		return nil
	}
	if err := s.physics.UpsertSurface(surface); err != nil {
		return fmt.Errorf("upsert surface %s: %w", a.ID, err)
	}
	_, existed := s.surfaces[a.ID]
	s.surfaces[a.ID] = surface

	s.logger.Info(msg,
		log.String("anchor", string(a.ID)),
		log.Vector("center", a.Plane.Center),
		log.Vector("extent", a.Plane.Extent),
	)
	s.publish(EventSurfaceUpserted, SurfaceUpserted{Surface: surface, Created: !existed})
	return nil
}

// AnchorRemoved drops the surface of a removed anchor. Unknown ids are ignored.
func (s *Scene) AnchorRemoved(id anchors.AnchorID) error {
	if _, ok := s.surfaces[id]; !ok {
		return nil
	}
	if err := s.physics.RemoveSurface(id); err != nil {
		return fmt.Errorf("remove surface %s: %w", id, err)
	}
	delete(s.surfaces, id)
	s.logger.Info("plane anchor removed", log.String("anchor", string(id)))
	s.publish(EventSurfaceRemoved, SurfaceRemoved{AnchorID: id})
	return nil
}

// Tap drops a new cube above hit. A nil hit means the ray cast found no plane;
// it is ignored and nothing changes.
func (s *Scene) Tap(hit *mgl64.Vec3) (*physics.BodyDescriptor, error) {
	if hit == nil {
		s.logger.Debug("tap missed every plane")
		return nil, nil
	}
	if err := s.acceptInput(); err != nil {
		return nil, err
	}

	desc := s.spawn.Cube(*hit)
	if err := s.physics.AddBody(desc); err != nil {
		return nil, fmt.Errorf("add body: %w", err)
	}
	evicted, err := s.registry.Insert(desc.Body())
	if err != nil {
		return nil, errors.Join(err, s.physics.RemoveBody(desc.ID))
	}
	s.logger.Debug("cube spawned",
		log.String("body", string(desc.ID)),
		log.Vector("position", desc.Position),
		log.Int("bodies", s.registry.Len()),
	)
	s.publish(EventBodySpawned, BodySpawned{Descriptor: desc})

	var errs []error
	for _, b := range evicted {
		if err := s.physics.RemoveBody(b.ID); err != nil {
			errs = append(errs, fmt.Errorf("remove evicted body %s: %w", b.ID, err))
			continue
		}
		s.publish(EventBodyEvicted, BodyEvicted{Body: b})
	}
	if len(evicted) > 0 {
		s.logger.Debug("bodies evicted", log.Int("count", len(evicted)))
	}
	return &desc, errors.Join(errs...)
}

// LongPress detonates at hit and applies the resulting impulses. A nil hit is ignored.
func (s *Scene) LongPress(hit *mgl64.Vec3) (map[physics.BodyID]mgl64.Vec3, error) {
	if hit == nil {
		s.logger.Debug("long press missed every plane")
		return nil, nil
	}
	if err := s.acceptInput(); err != nil {
		return nil, err
	}

	origin := *hit
	impulses := s.field.ComputeImpulses(origin, s.registry.Bodies())
	if err := s.physics.ApplyImpulses(impulses); err != nil {
		return nil, fmt.Errorf("apply impulses: %w", err)
	}
	s.logger.Debug("explosion",
		log.Vector("origin", origin),
		log.Int("bodies", s.registry.Len()),
		log.Int("impulses", len(impulses)),
	)
	s.publish(EventExplosion, Explosion{Origin: origin, Impulses: impulses})
	return impulses, nil
}

// ReportPosition records where the physics engine has moved a body.
func (s *Scene) ReportPosition(id physics.BodyID, pos mgl64.Vec3) error {
	return s.registry.UpdatePosition(id, pos)
}

func (s *Scene) Run() error             { return s.Apply(anchors.TransitionRun, nil) }
func (s *Scene) Pause() error           { return s.Apply(anchors.TransitionPause, nil) }
func (s *Scene) Fail(cause error) error { return s.Apply(anchors.TransitionFail, cause) }
func (s *Scene) Interrupt() error       { return s.Apply(anchors.TransitionInterrupt, nil) }
func (s *Scene) EndInterruption() error { return s.Apply(anchors.TransitionEndInterruption, nil) }

// Apply moves the session lifecycle and notifies the observer. cause is only used by TransitionFail.
func (s *Scene) Apply(t anchors.Transition, cause error) error {
	from := s.state
	to, err := from.Next(t)
	if err != nil {
		return err
	}
	s.state = to

	var resetErr error
	switch t {
	case anchors.TransitionFail:
		if cause == nil {
			cause = ErrSessionFailed
		}
		s.logger.Error("ar session failed", log.Error(cause))
		s.observer.SessionFailed(cause)
	case anchors.TransitionInterrupt:
		s.logger.Warn("ar session interrupted")
		s.observer.SessionInterrupted()
	case anchors.TransitionEndInterruption:
		if s.resetOnInterruption {
			resetErr = s.resetTracking()
		}
		s.logger.Info("ar session interruption ended", log.Bool("reset_tracking", s.resetOnInterruption))
		s.observer.SessionInterruptionEnded(s.resetOnInterruption)
	default:
		s.logger.Info("ar session state changed", log.String("from", from.String()), log.String("to", to.String()))
	}

	s.publish(EventLifecycle, LifecycleChanged{From: from, To: to, Transition: t, Cause: cause})
	return resetErr
}

// resetTracking forgets every surface; the host re-reports planes once tracking resumes.
func (s *Scene) resetTracking() error {
	var errs []error
	for _, surface := range s.Surfaces() {
		if err := s.AnchorRemoved(surface.AnchorID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scene) acceptInput() error {
	switch s.state {
	case anchors.LifecycleRunning:
		return nil
	case anchors.LifecycleFailed:
		return ErrSessionFailed
	default:
		return fmt.Errorf("%w: %s", ErrSceneNotRunning, s.state)
	}
}

func (s *Scene) publish(eventType string, data any) {
	if err := s.events.Publish(bus.NewEvent(eventType, s.source, data, nil)); err != nil {
		s.logger.Warn("scene event handler failed", log.String("event", eventType), log.Error(err))
	}
}
