package models

import (
	"fmt"
	"iter"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/blastfield/internal/core/systems/physics"
)

// EvictionPolicy controls what happens when a registry grows.
type EvictionPolicy uint8

const (
	// EvictNone keeps every body forever.
	EvictNone EvictionPolicy = iota
	// EvictOldest keeps at most Capacity bodies, dropping the earliest inserted.
	EvictOldest
)

func (p EvictionPolicy) String() string {
	switch p {
	case EvictNone:
		return "none"
	case EvictOldest:
		return "oldest"
	default:
		return fmt.Sprintf("EvictionPolicy(%d)", uint8(p))
	}
}

func ParseEvictionPolicy(s string) (EvictionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return EvictNone, nil
	case "oldest", "fifo":
		return EvictOldest, nil
	default:
		return EvictNone, fmt.Errorf("%w: %q", ErrUnknownEviction, s)
	}
}

// RegistryConfig configures a BodyRegistry.
type RegistryConfig struct {
	Eviction EvictionPolicy
	Capacity int
}

// BodyRegistry tracks live dynamic bodies in insertion order.
// It is owned by a single scene and is not safe for concurrent use.
type BodyRegistry struct {
	config RegistryConfig
	order  []physics.BodyID
	bodies map[physics.BodyID]*physics.Body
}

func NewBodyRegistry(config RegistryConfig) (*BodyRegistry, error) {
	if config.Eviction == EvictOldest && config.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &BodyRegistry{
		config: config,
		bodies: make(map[physics.BodyID]*physics.Body),
	}, nil
}

func (r *BodyRegistry) Config() RegistryConfig { return r.config }

func (r *BodyRegistry) Len() int { return len(r.order) }

// Insert appends a body and returns whatever the eviction policy dropped to make room.
func (r *BodyRegistry) Insert(b physics.Body) ([]physics.Body, error) {
	if _, exists := r.bodies[b.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBody, b.ID)
	}
	stored := b
	r.bodies[b.ID] = &stored
	r.order = append(r.order, b.ID)

	if r.config.Eviction != EvictOldest || len(r.order) <= r.config.Capacity {
		return nil, nil
	}

	n := len(r.order) - r.config.Capacity
	evicted := make([]physics.Body, 0, n)
	for _, id := range r.order[:n] {
		evicted = append(evicted, *r.bodies[id])
		delete(r.bodies, id)
	}
	r.order = append(r.order[:0], r.order[n:]...)
	return evicted, nil
}

func (r *BodyRegistry) Get(id physics.BodyID) (physics.Body, bool) {
	b, ok := r.bodies[id]
	if !ok {
		return physics.Body{}, false
	}
	return *b, true
}

func (r *BodyRegistry) UpdatePosition(id physics.BodyID, pos mgl64.Vec3) error {
	b, ok := r.bodies[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBodyNotFound, id)
	}
	b.Position = pos
	return nil
}

func (r *BodyRegistry) Remove(id physics.BodyID) error {
	if _, ok := r.bodies[id]; !ok {
		return fmt.Errorf("%w: %s", ErrBodyNotFound, id)
	}
	delete(r.bodies, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Bodies returns a snapshot in insertion order.
func (r *BodyRegistry) Bodies() []physics.Body {
	out := make([]physics.Body, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.bodies[id])
	}
	return out
}

// All iterates bodies in insertion order. The registry must not be mutated during iteration.
func (r *BodyRegistry) All() iter.Seq[physics.Body] {
	return func(yield func(physics.Body) bool) {
		for _, id := range r.order {
			if !yield(*r.bodies[id]) {
				return
			}
		}
	}
}
