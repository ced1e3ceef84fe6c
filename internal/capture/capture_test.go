package capture

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/OCAP2/flythrough/internal/simulator"
	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linePoses(n int) []core.Pose {
	poses := make([]core.Pose, n)
	for k := range poses {
		poses[k] = core.Pose{Position: core.Position3D{X: float64(k)}}
	}
	return poses
}

// wallAt returns a depth script that puts an obstacle right in front of the
// camera once it reaches x.
func wallAt(x float64) simulator.DepthFunc {
	return func(_ string, pose core.Pose, _, _ int) float32 {
		if pose.Position.X >= x {
			return 0.2
		}
		return 20
	}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		observed bool
		expected State
	}{
		{"flying stays flying", Flying, false, Flying},
		{"flying collides", Flying, true, Collided},
		{"collided is terminal", Collided, false, Collided},
		{"collided again", Collided, true, Collided},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Next(tt.state, tt.observed))
		})
	}
	assert.Equal(t, "flying", Flying.String())
	assert.Equal(t, "collided", Collided.String())
}

func TestCapture_NoCollision(t *testing.T) {
	f := simulator.NewFake(16, 16, 20)
	l := NewLoop(f, Config{FrameSize: 16})

	res, err := l.Capture(context.Background(), linePoses(40), false)
	require.NoError(t, err)

	assert.False(t, res.Collided())
	assert.Equal(t, 40, res.Steps())
	assert.Len(t, res.Depths, 40)
	assert.Len(t, res.Poses, 40)
	assert.Len(t, f.Poses(), 40)

	// BGR (30, 60, 90) arrives as RGB (90, 60, 30)
	frame := res.Frames[0]
	assert.Equal(t, uint8(90), frame.At(0, 3, 3))
	assert.Equal(t, uint8(60), frame.At(1, 3, 3))
	assert.Equal(t, uint8(30), frame.At(2, 3, 3))
	assert.Equal(t, 20.0, res.Depths[39].At(8, 8))
}

func TestCapture_CollisionStopsMotion(t *testing.T) {
	f := simulator.NewFake(16, 16, 0)
	f.Depth = wallAt(5)
	l := NewLoop(f, Config{})

	res, err := l.Capture(context.Background(), linePoses(40), false)
	require.NoError(t, err)

	assert.True(t, res.Collided())
	// steps 0..5 executed, the colliding step included
	assert.Equal(t, 6, res.Steps())
	assert.Len(t, res.Depths, 6)

	poses := f.Poses()
	require.Len(t, poses, 6)
	assert.Equal(t, 5.0, poses[5].Pose.Position.X)
	assert.Len(t, f.Calls(), 12)
}

func TestCapture_TolerantIgnoresObstacles(t *testing.T) {
	f := simulator.NewFake(16, 16, 0)
	f.Depth = wallAt(5)
	l := NewLoop(f, Config{})

	res, err := l.Capture(context.Background(), linePoses(40), true)
	require.NoError(t, err)
	assert.False(t, res.Collided())
	assert.Equal(t, 40, res.Steps())
	assert.Len(t, f.Poses(), 40)
}

func TestCapture_PeripheryDoesNotCollide(t *testing.T) {
	f := simulator.NewFake(16, 16, 0)
	f.Depth = func(_ string, _ core.Pose, x, y int) float32 {
		// window is [4, 12) on both axes
		if x >= 4 && x < 12 && y >= 4 && y < 12 {
			return 3
		}
		return 0.01
	}
	l := NewLoop(f, Config{})

	res, err := l.Capture(context.Background(), linePoses(10), false)
	require.NoError(t, err)
	assert.False(t, res.Collided())
	assert.Equal(t, 10, res.Steps())
}

func TestCapture_CustomThreshold(t *testing.T) {
	f := simulator.NewFake(8, 8, 1)
	l := NewLoop(f, Config{CollisionThreshold: 2})

	res, err := l.Capture(context.Background(), linePoses(5), false)
	require.NoError(t, err)
	assert.True(t, res.Collided())
	assert.Equal(t, 1, res.Steps())
}

func TestCapture_ResizesToFrameSize(t *testing.T) {
	f := simulator.NewFake(32, 24, 9)
	l := NewLoop(f, Config{FrameSize: 8})

	res, err := l.Capture(context.Background(), linePoses(3), false)
	require.NoError(t, err)
	require.Equal(t, 3, res.Steps())
	for i := range res.Frames {
		assert.Equal(t, 8, res.Frames[i].Width)
		assert.Equal(t, 8, res.Frames[i].Height)
		assert.Len(t, res.Frames[i].Pix, 3*8*8)
		assert.Len(t, res.Depths[i].Data, 8*8)
	}
}

func TestCapture_FrameHook(t *testing.T) {
	f := simulator.NewFake(8, 8, 0)
	f.Depth = wallAt(2)

	var steps []int
	l := NewLoop(f, Config{OnFrame: func(step int, frame core.Frame) error {
		steps = append(steps, step)
		assert.Equal(t, 8, frame.Width)
		return nil
	}})

	_, err := l.Capture(context.Background(), linePoses(10), false)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, steps)
}

func TestCapture_FrameHookError(t *testing.T) {
	boom := errors.New("disk full")
	f := simulator.NewFake(8, 8, 10)
	l := NewLoop(f, Config{OnFrame: func(step int, _ core.Frame) error {
		if step == 1 {
			return boom
		}
		return nil
	}})

	res, err := l.Capture(context.Background(), linePoses(10), false)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, res.Steps())
}

func TestCapture_SimulatorError(t *testing.T) {
	boom := errors.New("rpc: connection reset")
	f := simulator.NewFake(8, 8, 10)
	f.FailOn = map[string]error{"simGetImages": boom}
	l := NewLoop(f, Config{})

	_, err := l.Capture(context.Background(), linePoses(3), false)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.Poses(), 1)
}

func TestCapture_Cancelled(t *testing.T) {
	f := simulator.NewFake(8, 8, 10)
	l := NewLoop(f, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Capture(ctx, linePoses(3), false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.Poses())
}

func TestClosestDepth(t *testing.T) {
	d := core.DepthMap{Width: 5, Height: 5, Data: make([]float64, 25)}
	for i := range d.Data {
		d.Data[i] = 100
	}
	// window for 5x5 is rows and columns [1, 3)
	d.Data[0] = -1
	d.Data[3*5+3] = -1
	d.Data[2*5+2] = 7
	assert.Equal(t, 7.0, ClosestDepth(d))

	d.Data[1*5+1] = 4
	assert.Equal(t, 4.0, ClosestDepth(d))

	tiny := core.DepthMap{Width: 1, Height: 1, Data: []float64{0}}
	assert.True(t, math.IsInf(ClosestDepth(tiny), 1))
}
