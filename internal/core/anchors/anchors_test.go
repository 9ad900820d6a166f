package anchors

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchor_SurfaceOnlyForPlanes(t *testing.T) {
	plane := NewPlane("p1", mgl64.Vec3{0, -1, -2}, mgl64.Vec3{0.8, 0, 1.2})
	s, ok := plane.Surface()
	require.True(t, ok)
	assert.Equal(t, Surface{AnchorID: "p1", Center: mgl64.Vec3{0, -1, -2}, Width: 0.8, Depth: 1.2}, s)

	for _, k := range []Kind{KindUnknown, KindPoint, KindImage, KindFace} {
		_, ok := Anchor{ID: "x", Kind: k}.Surface()
		assert.False(t, ok, k.String())
	}

	_, ok = Anchor{ID: "empty", Kind: KindPlane}.Surface()
	assert.False(t, ok)

	// a payload on a non-plane kind is not interpreted
	_, ok = Anchor{ID: "odd", Kind: KindPoint, Plane: &PlaneAnchor{}}.Surface()
	assert.False(t, ok)
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindPlane, ParseKind("Plane"))
	assert.Equal(t, KindFace, ParseKind("face"))
	assert.Equal(t, KindUnknown, ParseKind("body"))
}

func TestLifecycle_Next(t *testing.T) {
	cases := []struct {
		from Lifecycle
		by   Transition
		to   Lifecycle
		ok   bool
	}{
		{LifecyclePaused, TransitionRun, LifecycleRunning, true},
		{LifecycleRunning, TransitionPause, LifecyclePaused, true},
		{LifecycleRunning, TransitionInterrupt, LifecycleInterrupted, true},
		{LifecycleInterrupted, TransitionEndInterruption, LifecycleRunning, true},
		{LifecycleInterrupted, TransitionPause, LifecyclePaused, true},
		{LifecycleRunning, TransitionFail, LifecycleFailed, true},
		{LifecycleFailed, TransitionRun, LifecycleRunning, true},
		{LifecyclePaused, TransitionInterrupt, LifecyclePaused, false},
		{LifecycleRunning, TransitionEndInterruption, LifecycleRunning, false},
		{LifecycleFailed, TransitionPause, LifecycleFailed, false},
	}
	for _, tc := range cases {
		got, err := tc.from.Next(tc.by)
		if tc.ok {
			require.NoError(t, err, "%s by %s", tc.from, tc.by)
		} else {
			require.ErrorIs(t, err, ErrInvalidTransition, "%s by %s", tc.from, tc.by)
		}
		assert.Equal(t, tc.to, got, "%s by %s", tc.from, tc.by)
	}
}

func TestParseTransition(t *testing.T) {
	for _, tr := range []Transition{TransitionRun, TransitionPause, TransitionFail, TransitionInterrupt, TransitionEndInterruption} {
		got, err := ParseTransition(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
	_, err := ParseTransition("resume")
	require.ErrorIs(t, err, ErrUnknownTransition)
}
