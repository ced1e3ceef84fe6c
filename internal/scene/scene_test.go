package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsFor_Known(t *testing.T) {
	for _, name := range Names() {
		p, err := BoundsFor(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name)
		assert.Less(t, p.XRange.Min, p.XRange.Max)
		assert.Less(t, p.YRange.Min, p.YRange.Max)
		assert.Greater(t, p.ProbeAltitude, 0.0)
	}
}

func TestBoundsFor_Unknown(t *testing.T) {
	_, err := BoundsFor("foo")
	require.Error(t, err)

	var unknown *UnknownEnvironmentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "foo", unknown.Name)
	assert.Contains(t, err.Error(), `"foo"`)
}

func TestBoundsFor_ReturnsCopy(t *testing.T) {
	p, err := BoundsFor("nh_fall")
	require.NoError(t, err)
	require.NotEmpty(t, p.Overlays)
	p.Overlays[0].Intensity = 0
	p.XRange.Max = 0

	q, err := BoundsFor("nh_fall")
	require.NoError(t, err)
	assert.Equal(t, float32(1), q.Overlays[0].Intensity)
	assert.Equal(t, 150.0, q.XRange.Max)
}

func TestBoundsFor_TrapIsCollisionTolerant(t *testing.T) {
	p, err := BoundsFor("trap")
	require.NoError(t, err)
	assert.True(t, p.CollisionTolerant)

	for _, name := range []string{"blocks", "nh", "nh_fall", "nh_winter", "mountains"} {
		p, err := BoundsFor(name)
		require.NoError(t, err)
		assert.False(t, p.CollisionTolerant, name)
	}
}

func TestBoundsFor_WeatherOverlays(t *testing.T) {
	fall, err := BoundsFor("nh_fall")
	require.NoError(t, err)
	assert.True(t, fall.Weather)
	assert.ElementsMatch(t, []WeatherOverlay{{MapleLeaf, 1}, {RoadLeaf, 1}}, fall.Overlays)

	winter, err := BoundsFor("nh_winter")
	require.NoError(t, err)
	assert.ElementsMatch(t, []WeatherOverlay{{Snow, 1}, {RoadSnow, 1}}, winter.Overlays)

	nh, err := BoundsFor("nh")
	require.NoError(t, err)
	assert.True(t, nh.Weather)
	assert.Empty(t, nh.Overlays)

	blocks, err := BoundsFor("blocks")
	require.NoError(t, err)
	assert.False(t, blocks.Weather)
}

func TestProfile_Position(t *testing.T) {
	rect := Profile{Region: Rect}
	x, y := rect.Position(3, -4)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, -4.0, y)

	mountains, err := BoundsFor("mountains")
	require.NoError(t, err)
	x, y = mountains.Position(1000, 50)
	assert.Equal(t, 1050.0, x)
	assert.Equal(t, 950.0, y)
	assert.Equal(t, 100.0, mountains.ProbeAltitude)
}

func TestNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"blocks", "mountains", "nh", "nh_fall", "nh_winter", "trap"}, Names())
}
