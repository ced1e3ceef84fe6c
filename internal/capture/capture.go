// Package capture flies the camera along a pose sequence and collects frames and depth.
package capture

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/OCAP2/flythrough/internal/imaging"
	"github.com/OCAP2/flythrough/internal/simulator"
	"github.com/OCAP2/flythrough/internal/util"
	"github.com/OCAP2/flythrough/pkg/core"

	"gonum.org/v1/gonum/floats"
)

// DefaultCollisionThreshold is the closest depth the camera may see before the
// trial counts as a collision.
const DefaultCollisionThreshold = 0.5

// State of the camera during a capture.
type State int

const (
	Flying State = iota
	Collided
)

func (s State) String() string {
	if s == Collided {
		return "collided"
	}
	return "flying"
}

// Next returns the state after a step. Collided is terminal.
func Next(s State, collisionObserved bool) State {
	if s == Collided || collisionObserved {
		return Collided
	}
	return Flying
}

// FrameHook is called with every captured frame, before the collision check takes effect.
type FrameHook func(step int, frame core.Frame) error

// Config controls a Loop.
type Config struct {
	// FrameSize is the side length frames and depth maps are stored at.
	FrameSize          int
	CollisionThreshold float64
	// Pause is waited after every executed step.
	Pause   time.Duration
	OnFrame FrameHook
}

// Result of a capture. Frames, Depths and Poses are index-aligned and hold one
// entry per executed step; steps after a collision are not executed.
type Result struct {
	Frames []core.Frame
	Depths []core.DepthMap
	Poses  []core.Pose
	State  State
}

// Collided reports whether the capture ended in a collision.
func (r Result) Collided() bool {
	return r.State == Collided
}

// Steps returns the number of executed steps.
func (r Result) Steps() int {
	return len(r.Frames)
}

// Loop executes pose sequences against a simulator session.
type Loop struct {
	session simulator.Session
	cfg     Config
}

// NewLoop creates a Loop. A zero CollisionThreshold selects DefaultCollisionThreshold.
func NewLoop(session simulator.Session, cfg Config) *Loop {
	if cfg.CollisionThreshold == 0 {
		cfg.CollisionThreshold = DefaultCollisionThreshold
	}
	return &Loop{session: session, cfg: cfg}
}

var captureRequests = []simulator.ImageRequest{
	{CameraName: simulator.CameraFrontCenter, ImageType: simulator.ImageScene},
	{CameraName: simulator.CameraFrontCenter, ImageType: simulator.ImageDepthPlanar, PixelsAsFloat: true},
}

// Capture flies through poses in order. When tolerant is false, a step whose
// central depth window comes closer than the collision threshold ends motion:
// no further pose commands are sent for the remaining steps.
func (l *Loop) Capture(ctx context.Context, poses []core.Pose, tolerant bool) (Result, error) {
	res := Result{
		Frames: make([]core.Frame, 0, len(poses)),
		Depths: make([]core.DepthMap, 0, len(poses)),
		Poses:  make([]core.Pose, 0, len(poses)),
		State:  Flying,
	}

	for step, pose := range poses {
		if res.State == Collided {
			break
		}

		if err := l.session.SetVehiclePose(ctx, pose, true); err != nil {
			return res, fmt.Errorf("step %d: failed to set pose: %w", step, err)
		}
		responses, err := l.session.GetImages(ctx, captureRequests)
		if err != nil {
			return res, fmt.Errorf("step %d: failed to get images: %w", step, err)
		}
		if len(responses) < len(captureRequests) {
			return res, fmt.Errorf("step %d: got %d images, want %d: %w",
				step, len(responses), len(captureRequests), simulator.ErrNoImages)
		}

		frame, err := imaging.FrameFromBGR(responses[0].ImageDataUint8, responses[0].Width, responses[0].Height)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		depth, err := imaging.DepthFromFloat(responses[1].ImageDataFloat, responses[1].Width, responses[1].Height)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}

		collision := !tolerant && ClosestDepth(depth) < l.cfg.CollisionThreshold

		if l.cfg.FrameSize > 0 {
			frame = imaging.ResizeFrame(frame, l.cfg.FrameSize)
			depth = imaging.ResizeDepth(depth, l.cfg.FrameSize)
		}
		res.Frames = append(res.Frames, frame)
		res.Depths = append(res.Depths, depth)
		res.Poses = append(res.Poses, pose)

		if l.cfg.OnFrame != nil {
			if err := l.cfg.OnFrame(step, frame); err != nil {
				return res, fmt.Errorf("step %d: %w", step, err)
			}
		}

		res.State = Next(res.State, collision)

		if err := util.Sleep(ctx, l.cfg.Pause); err != nil {
			return res, err
		}
	}
	return res, nil
}

// ClosestDepth returns the minimum over the central window of a depth map:
// rows [H/4, H-ceil(H/4)) and columns [W/4, W-ceil(W/4)). A window that is
// empty reports +Inf.
func ClosestDepth(d core.DepthMap) float64 {
	r0, r1 := d.Height/4, d.Height-(d.Height+3)/4
	c0, c1 := d.Width/4, d.Width-(d.Width+3)/4
	if r1 <= r0 || c1 <= c0 {
		return math.Inf(1)
	}
	window := make([]float64, 0, (r1-r0)*(c1-c0))
	for y := r0; y < r1; y++ {
		window = append(window, d.Data[y*d.Width+c0:y*d.Width+c1]...)
	}
	return floats.Min(window)
}
