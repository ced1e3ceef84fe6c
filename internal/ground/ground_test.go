package ground

import (
	"context"
	"errors"
	"testing"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/internal/simulator"
	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClearance float64

func (c fixedClearance) Clearance() float64 { return float64(c) }

func profile(t *testing.T, name string) scene.Profile {
	t.Helper()
	p, err := scene.BoundsFor(name)
	require.NoError(t, err)
	return p
}

func TestLocate_FlatGround(t *testing.T) {
	f := simulator.NewFake(112, 112, 6.5)
	l := NewLocator(f, fixedClearance(1.5), 0)

	res, err := l.Locate(context.Background(), profile(t, "trap"), 3, -4)
	require.NoError(t, err)

	assert.False(t, res.Rejected)
	assert.InDelta(t, 6.5, res.Median, 1e-6)
	assert.InDelta(t, -5+6.5-1.5, res.Z, 1e-6)

	poses := f.Poses()
	require.Len(t, poses, 1)
	assert.Equal(t, core.Pose{Position: core.Position3D{X: 3, Y: -4, Z: -5}}, poses[0].Pose)
	assert.True(t, poses[0].IgnoreCollision)
	assert.Equal(t, []string{"simSetVehiclePose", "simGetImages"}, f.Calls())
}

func TestLocate_UsesOnlyCenterWindow(t *testing.T) {
	f := simulator.NewFake(10, 10, 0)
	f.Depth = func(camera string, _ core.Pose, x, y int) float32 {
		assert.Equal(t, simulator.CameraBottomCenter, camera)
		if x >= 4 && x < 6 && y >= 4 && y < 6 {
			return 8
		}
		return 1000
	}
	l := NewLocator(f, fixedClearance(2), 0)

	res, err := l.Locate(context.Background(), profile(t, "blocks"), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Median)
	assert.InDelta(t, -5+8-2, res.Z, 1e-9)
}

func TestLocate_RejectsDeepGround(t *testing.T) {
	mountains := profile(t, "mountains")
	f := simulator.NewFake(16, 16, float32(mountains.ProbeAltitude+60))
	l := NewLocator(f, fixedClearance(1.4), 50)

	res, err := l.Locate(context.Background(), mountains, 1000, 1000)
	require.NoError(t, err)
	assert.True(t, res.Rejected)
	assert.InDelta(t, 60-1.4, res.Z, 1e-4)
}

func TestLocate_BoundaryIsAccepted(t *testing.T) {
	f := simulator.NewFake(16, 16, 57)
	l := NewLocator(f, fixedClearance(2), 50)

	res, err := l.Locate(context.Background(), profile(t, "blocks"), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Z)
	assert.False(t, res.Rejected)
}

func TestLocate_PropagatesSimulatorErrors(t *testing.T) {
	boom := errors.New("connection reset")

	f := simulator.NewFake(16, 16, 5)
	f.FailOn = map[string]error{"simGetImages": boom}
	_, err := NewLocator(f, fixedClearance(2), 0).Locate(context.Background(), profile(t, "blocks"), 0, 0)
	assert.ErrorIs(t, err, boom)

	f = simulator.NewFake(16, 16, 5)
	f.FailOn = map[string]error{"simSetVehiclePose": boom}
	_, err = NewLocator(f, fixedClearance(2), 0).Locate(context.Background(), profile(t, "blocks"), 0, 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"simSetVehiclePose"}, f.Calls())
}

func TestCenterMedian(t *testing.T) {
	// 5x5: window is rows [2,3) and columns [2,3), the single center pixel
	data := make([]float32, 25)
	data[12] = 42
	m, err := CenterMedian(data, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 42.0, m)

	// 10x10: window is the 2x2 block at [4,6)
	data = make([]float32, 100)
	data[44], data[45], data[54], data[55] = 1, 2, 3, 10
	m, err = CenterMedian(data, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 2.5, m)
}

func TestCenterMedian_Invalid(t *testing.T) {
	_, err := CenterMedian(make([]float32, 3), 2, 2)
	assert.Error(t, err)

	// a 1x1 buffer has an empty center window
	_, err = CenterMedian(make([]float32, 1), 1, 1)
	assert.Error(t, err)
}
