package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultMaxDistance   = 2.0
	DefaultAmplification = 2.0
	DefaultEpsilon       = 1e-6
)

// ZeroDistancePolicy decides what happens to a body sitting exactly on the explosion origin.
type ZeroDistancePolicy uint8

const (
	// ZeroDistanceSkip leaves the body out of the result.
	ZeroDistanceSkip ZeroDistancePolicy = iota
	// ZeroDistanceClamp raises the squared distance to epsilon and keeps the body.
	ZeroDistanceClamp
)

func (p ZeroDistancePolicy) String() string {
	switch p {
	case ZeroDistanceSkip:
		return "skip"
	case ZeroDistanceClamp:
		return "clamp"
	default:
		return fmt.Sprintf("ZeroDistancePolicy(%d)", uint8(p))
	}
}

// ParseZeroDistancePolicy accepts "skip" (also the empty string) and "clamp".
func ParseZeroDistancePolicy(s string) (ZeroDistancePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return ZeroDistanceSkip, nil
	case "clamp":
		return ZeroDistanceClamp, nil
	default:
		return ZeroDistanceSkip, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// RadialImpulseField computes an outward impulse for every body around an origin.
//
// The falloff works on the squared distance truncated to an integer, so it is
// a step function: bodies with a squared distance of at least MaxDistance get
// nothing, closer ones get (MaxDistance - trunc(lenSq))^2 * Amplification.
// The displacement is divided by the squared distance, not by its length.
//
// The zero value is not usable; build one with NewRadialImpulseField.
type RadialImpulseField struct {
	maxDistance   float64
	amplification float64
	zeroPolicy    ZeroDistancePolicy
	epsilon       float64
}

type FieldOption func(*RadialImpulseField)

func WithMaxDistance(d float64) FieldOption {
	return func(f *RadialImpulseField) { f.maxDistance = d }
}

func WithAmplification(a float64) FieldOption {
	return func(f *RadialImpulseField) { f.amplification = a }
}

func WithZeroDistancePolicy(p ZeroDistancePolicy) FieldOption {
	return func(f *RadialImpulseField) { f.zeroPolicy = p }
}

// WithEpsilon sets the lower bound used by ZeroDistanceClamp. Non-positive values are ignored.
func WithEpsilon(eps float64) FieldOption {
	return func(f *RadialImpulseField) {
		if eps > 0 {
			f.epsilon = eps
		}
	}
}

func NewRadialImpulseField(opts ...FieldOption) *RadialImpulseField {
	f := &RadialImpulseField{
		maxDistance:   DefaultMaxDistance,
		amplification: DefaultAmplification,
		zeroPolicy:    ZeroDistanceSkip,
		epsilon:       DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *RadialImpulseField) MaxDistance() float64                   { return f.maxDistance }
func (f *RadialImpulseField) Amplification() float64                 { return f.amplification }
func (f *RadialImpulseField) ZeroDistancePolicy() ZeroDistancePolicy { return f.zeroPolicy }
func (f *RadialImpulseField) Epsilon() float64                       { return f.epsilon }

// Scale returns the falloff factor for a squared distance.
func (f *RadialImpulseField) Scale(lenSq float64) float64 {
	s := math.Max(0, f.maxDistance-math.Trunc(lenSq))
	return s * s * f.amplification
}

// Impulse computes the impulse for a single body. ok is false when the body is
// skipped by the zero distance policy.
func (f *RadialImpulseField) Impulse(origin, position mgl64.Vec3) (impulse mgl64.Vec3, ok bool) {
	d := position.Sub(origin)
	lenSq := d.Dot(d)

	switch f.zeroPolicy {
	case ZeroDistanceClamp:
		if lenSq < f.epsilon {
			lenSq = f.epsilon
		}
	default:
		if lenSq == 0 {
			return mgl64.Vec3{}, false
		}
	}

	scale := f.Scale(lenSq)
	if scale == 0 {
		return mgl64.Vec3{}, true
	}
	return mgl64.Vec3{d[0] / lenSq * scale, d[1] / lenSq * scale, d[2] / lenSq * scale}, true
}

// ComputeImpulses maps every body id to the impulse the explosion at origin applies to it.
// It has no side effects; applying the result is left to the physics engine.
func (f *RadialImpulseField) ComputeImpulses(origin mgl64.Vec3, bodies []Body) map[BodyID]mgl64.Vec3 {
	out := make(map[BodyID]mgl64.Vec3, len(bodies))
	for _, b := range bodies {
		if impulse, ok := f.Impulse(origin, b.Position); ok {
			out[b.ID] = impulse
		}
	}
	return out
}
