package anchors

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// AnchorID is the identifier the AR tracking subsystem assigned to an anchor.
type AnchorID string

// Kind tags which payload an Anchor carries.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPlane
	KindPoint
	KindImage
	KindFace
)

func (k Kind) String() string {
	switch k {
	case KindPlane:
		return "plane"
	case KindPoint:
		return "point"
	case KindImage:
		return "image"
	case KindFace:
		return "face"
	default:
		return "unknown"
	}
}

// ParseKind maps wire names to kinds. Unrecognised names become KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plane":
		return KindPlane
	case "point":
		return KindPoint
	case "image":
		return KindImage
	case "face":
		return KindFace
	default:
		return KindUnknown
	}
}

// PlaneAnchor is the payload of a detected horizontal plane.
// Extent is the full size along the plane's local X and Z axes; Y is ignored.
type PlaneAnchor struct {
	Center mgl64.Vec3
	Extent mgl64.Vec3
}

// Anchor is a tracked real-world position. Plane is set only when Kind is KindPlane.
type Anchor struct {
	ID    AnchorID
	Kind  Kind
	Plane *PlaneAnchor
}

// NewPlane builds a plane anchor.
func NewPlane(id AnchorID, center, extent mgl64.Vec3) Anchor {
	return Anchor{ID: id, Kind: KindPlane, Plane: &PlaneAnchor{Center: center, Extent: extent}}
}

// Surface is a flat static collision surface sized from a plane anchor.
type Surface struct {
	AnchorID AnchorID
	Center   mgl64.Vec3
	Width    float64
	Depth    float64
}

func (s Surface) String() string {
	return fmt.Sprintf("surface(%s %.3fx%.3f at %v)", s.AnchorID, s.Width, s.Depth, s.Center)
}

// Surface returns the collision surface for plane anchors. Every other kind, and
// a plane without payload, reports false.
func (a Anchor) Surface() (Surface, bool) {
	switch a.Kind {
	case KindPlane:
		if a.Plane == nil {
			return Surface{}, false
		}
		return Surface{
			AnchorID: a.ID,
			Center:   a.Plane.Center,
			Width:    a.Plane.Extent.X(),
			Depth:    a.Plane.Extent.Z(),
		}, true
	default:
		return Surface{}, false
	}
}
