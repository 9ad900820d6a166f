package server

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/blastfield/internal/core/anchors"
	"github.com/zeusync/blastfield/internal/core/systems/physics"
)

// Client to server message types.
const (
	MsgAnchorAdded   = "anchor_added"
	MsgAnchorUpdated = "anchor_updated"
	MsgAnchorRemoved = "anchor_removed"
	MsgTap           = "tap"
	MsgLongPress     = "long_press"
	MsgBodyPosition  = "body_position"
	MsgSession       = "session"
)

// Server to client message types.
const (
	MsgSurfaceUpsert = "surface_upsert"
	MsgSurfaceRemove = "surface_remove"
	MsgBodyAdd       = "body_add"
	MsgBodyRemove    = "body_remove"
	MsgImpulses      = "impulses"
	MsgLifecycle     = "lifecycle"
	MsgNotice        = "notice"
	MsgError         = "error"
	MsgWelcome       = "welcome"
)

// Vec is a world-space vector on the wire: [x, y, z].
type Vec [3]float64

func (v Vec) Vec3() mgl64.Vec3 { return mgl64.Vec3(v) }

func toVec(v mgl64.Vec3) Vec { return Vec(v) }

// ClientMessage is everything the AR host can send. Hit is omitted when the
// ray cast did not meet a plane.
type ClientMessage struct {
	Type       string         `json:"type"`
	Seq        uint64         `json:"seq,omitempty"`
	Anchor     *AnchorPayload `json:"anchor,omitempty"`
	AnchorID   string         `json:"anchor_id,omitempty"`
	Hit        *Vec           `json:"hit,omitempty"`
	BodyID     string         `json:"body_id,omitempty"`
	Position   *Vec           `json:"position,omitempty"`
	Transition string         `json:"transition,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type AnchorPayload struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Center Vec    `json:"center"`
	Extent Vec    `json:"extent"`
}

// Anchor converts the payload into a tagged anchor. Only planes carry geometry.
func (p AnchorPayload) Anchor() (anchors.Anchor, error) {
	if p.ID == "" {
		return anchors.Anchor{}, fmt.Errorf("%w: anchor.id", ErrMissingField)
	}
	kind := anchors.ParseKind(p.Kind)
	if kind == anchors.KindPlane {
		return anchors.NewPlane(anchors.AnchorID(p.ID), p.Center.Vec3(), p.Extent.Vec3()), nil
	}
	return anchors.Anchor{ID: anchors.AnchorID(p.ID), Kind: kind}, nil
}

// ServerMessage is everything the bridge sends back to the AR host.
type ServerMessage struct {
	Type      string            `json:"type"`
	Seq       uint64            `json:"seq,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Surface   *SurfacePayload   `json:"surface,omitempty"`
	AnchorID  string            `json:"anchor_id,omitempty"`
	Body      *BodyPayload      `json:"body,omitempty"`
	BodyID    string            `json:"body_id,omitempty"`
	Impulses  []ImpulsePayload  `json:"impulses,omitempty"`
	Lifecycle *LifecyclePayload `json:"lifecycle,omitempty"`
	Notice    string            `json:"notice,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type SurfacePayload struct {
	AnchorID string  `json:"anchor_id"`
	Center   Vec     `json:"center"`
	Width    float64 `json:"width"`
	Depth    float64 `json:"depth"`
}

func surfacePayload(s anchors.Surface) *SurfacePayload {
	return &SurfacePayload{AnchorID: string(s.AnchorID), Center: toVec(s.Center), Width: s.Width, Depth: s.Depth}
}

type BodyPayload struct {
	ID       string  `json:"id"`
	Shape    string  `json:"shape"`
	Size     float64 `json:"size"`
	Mass     float64 `json:"mass"`
	Position Vec     `json:"position"`
}

func bodyPayload(d physics.BodyDescriptor) *BodyPayload {
	return &BodyPayload{
		ID:       string(d.ID),
		Shape:    d.Shape.Type.String(),
		Size:     d.Shape.Size,
		Mass:     d.Mass,
		Position: toVec(d.Position),
	}
}

// ImpulsePayload is applied by the host in impulse mode.
type ImpulsePayload struct {
	BodyID  string `json:"body_id"`
	Impulse Vec    `json:"impulse"`
}

// impulsePayloads flattens an impulse map, ordered by body id.
func impulsePayloads(impulses map[physics.BodyID]mgl64.Vec3) []ImpulsePayload {
	out := make([]ImpulsePayload, 0, len(impulses))
	for id, v := range impulses {
		out = append(out, ImpulsePayload{BodyID: string(id), Impulse: toVec(v)})
	}
	slices.SortFunc(out, func(a, b ImpulsePayload) int { return cmp.Compare(a.BodyID, b.BodyID) })
	return out
}

type LifecyclePayload struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Transition string `json:"transition"`
}
