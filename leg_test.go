package spiderbot

import (
	"testing"

	"github.com/adammck/spiderbot/math3d"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegFromIndex(t *testing.T) {
	for i, leg := range Legs {
		l, err := LegFromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, leg, l)
		assert.Equal(t, i, l.Index())
	}

	for _, i := range []int{-1, 4, 255} {
		_, err := LegFromIndex(i)
		assert.True(t, errors.Is(err, ErrInvalidLeg), "index %d", i)
	}
}

func TestLegString(t *testing.T) {
	type eg struct {
		leg Leg
		exp string
	}

	examples := []eg{
		{FrontLeft, "front left"},
		{BottomLeft, "bottom left"},
		{FrontRight, "front right"},
		{BottomRight, "bottom right"},
		{Leg(7), "leg(7)"},
	}

	for _, x := range examples {
		assert.Equal(t, x.exp, x.leg.String())
	}
}

func TestLeft(t *testing.T) {
	assert.True(t, FrontLeft.Left())
	assert.True(t, BottomLeft.Left())
	assert.False(t, FrontRight.Left())
	assert.False(t, BottomRight.Left())
}

func TestPositions(t *testing.T) {
	var p Positions
	p.Set(BottomRight, math3d.Vector3{X: 62, Y: 40, Z: -50})

	assert.Equal(t, math3d.Vector3{X: 62, Y: 40, Z: -50}, p.At(BottomRight))
	assert.Equal(t, math3d.ZeroVector3, p.At(FrontLeft))

	pp := p
	assert.True(t, p.Equal(pp))

	pp.Set(FrontLeft, math3d.Vector3{Z: -28})
	assert.False(t, p.Equal(pp))
}

func TestIsKeep(t *testing.T) {
	assert.True(t, IsKeep(Keep))
	assert.False(t, IsKeep(254.99))
	assert.False(t, IsKeep(0))
}

func standing() Positions {
	var p Positions
	for _, leg := range Legs {
		p.Set(leg, math3d.Vector3{X: 62, Y: 40, Z: -50})
	}

	return p
}

func TestPositionsAtReturnValue(t *testing.T) {
	assert.Equal(t, 40.0, standing().At(FrontRight).Y)
	assert.Equal(t, -50.0, standing().At(BottomLeft).Z)
}
