package simulator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
)

func TestQuaternion_Identity(t *testing.T) {
	assert.Equal(t, quat.Number{Real: 1}, Quaternion(core.Orientation{}))
}

func TestQuaternion_UnitNormAndYaw(t *testing.T) {
	q := Quaternion(core.Orientation{Pitch: 0.2, Roll: -0.3, Yaw: 1.1})
	assert.InDelta(t, 1, quat.Abs(q), 1e-12)

	yaw := Quaternion(core.Orientation{Yaw: math.Pi / 2})
	assert.InDelta(t, math.Cos(math.Pi/4), yaw.Real, 1e-12)
	assert.InDelta(t, math.Sin(math.Pi/4), yaw.Kmag, 1e-12)
	assert.InDelta(t, 0, yaw.Imag, 1e-12)
	assert.InDelta(t, 0, yaw.Jmag, 1e-12)

	pitch := Quaternion(core.Orientation{Pitch: 0.5})
	assert.InDelta(t, math.Cos(0.25), pitch.Real, 1e-12)
	assert.InDelta(t, math.Sin(0.25), pitch.Jmag, 1e-12)
}

func TestFixedHour(t *testing.T) {
	tod := FixedHour(5)
	assert.Equal(t, "2020-03-21 05:00:00", tod.StartDateTime)
	assert.True(t, tod.Enabled)
	assert.True(t, tod.MoveSun)
	assert.Equal(t, 60.0, tod.UpdateIntervalSecs)
	assert.Equal(t, "2020-03-21 20:00:00", FixedHour(20).StartDateTime)
}

func TestApplyWeather(t *testing.T) {
	winter, err := scene.BoundsFor("nh_winter")
	require.NoError(t, err)

	f := NewFake(4, 4, 10)
	require.NoError(t, ApplyWeather(context.Background(), f, winter))

	enabled, params := f.Weather()
	assert.True(t, enabled)
	assert.Len(t, params, scene.WeatherParameterCount)
	assert.Equal(t, float32(1), params[scene.Snow])
	assert.Equal(t, float32(1), params[scene.RoadSnow])
	assert.Equal(t, float32(0), params[scene.MapleLeaf])
	assert.Equal(t, float32(0), params[scene.Rain])

	calls := f.Calls()
	assert.Equal(t, "simEnableWeather", calls[0])
	assert.Len(t, calls, 1+scene.WeatherParameterCount+len(winter.Overlays))
}

func TestApplyWeather_NoWeatherProfile(t *testing.T) {
	blocks, err := scene.BoundsFor("blocks")
	require.NoError(t, err)

	f := NewFake(4, 4, 10)
	require.NoError(t, ApplyWeather(context.Background(), f, blocks))
	assert.Empty(t, f.Calls())
}

func TestApplyWeather_PropagatesError(t *testing.T) {
	nh, err := scene.BoundsFor("nh")
	require.NoError(t, err)

	boom := errors.New("boom")
	f := NewFake(4, 4, 10)
	f.FailOn = map[string]error{"simSetWeatherParameter": boom}
	assert.ErrorIs(t, ApplyWeather(context.Background(), f, nh), boom)
}

func TestResetPose(t *testing.T) {
	f := NewFake(4, 4, 10)
	require.NoError(t, ResetPose(context.Background(), f))

	poses := f.Poses()
	require.Len(t, poses, 1)
	assert.Equal(t, core.Pose{}, poses[0].Pose)
	assert.True(t, poses[0].IgnoreCollision)
}

func TestFake_RendersScriptedBuffers(t *testing.T) {
	f := NewFake(3, 2, 0)
	f.Depth = func(camera string, pose core.Pose, x, y int) float32 {
		if camera == CameraBottomCenter {
			return float32(pose.Position.Z)
		}
		return float32(x + 10*y)
	}
	ctx := context.Background()
	require.NoError(t, f.SetVehiclePose(ctx, core.Pose{Position: core.Position3D{Z: -5}}, true))

	responses, err := f.GetImages(ctx, []ImageRequest{
		{CameraName: CameraFrontCenter, ImageType: ImageScene},
		{CameraName: CameraFrontCenter, ImageType: ImageDepthPlanar, PixelsAsFloat: true},
		{CameraName: CameraBottomCenter, ImageType: ImageDepthPlanar, PixelsAsFloat: true},
	})
	require.NoError(t, err)
	require.Len(t, responses, 3)

	assert.Len(t, responses[0].ImageDataUint8, 3*3*2)
	assert.Equal(t, []byte{30, 60, 90}, responses[0].ImageDataUint8[:3])
	assert.Equal(t, []float32{0, 1, 2, 10, 11, 12}, responses[1].ImageDataFloat)
	assert.Equal(t, float32(-5), responses[2].ImageDataFloat[0])
}

func TestFake_ClosedAndCancelled(t *testing.T) {
	f := NewFake(1, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.Ping(ctx), context.Canceled)

	require.NoError(t, f.Close())
	assert.True(t, f.Closed())
	assert.Error(t, f.Ping(context.Background()))
}
