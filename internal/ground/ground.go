// Package ground finds a plausible start altitude by probing the terrain below a point.
package ground

import (
	"context"
	"fmt"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/internal/simulator"
	"github.com/OCAP2/flythrough/internal/util"
	"github.com/OCAP2/flythrough/pkg/core"
)

// DefaultMaxStartDepth is the deepest start altitude (NED, positive down) accepted.
const DefaultMaxStartDepth = 50.0

// ClearanceSource draws the height kept between the camera and the ground.
type ClearanceSource interface {
	Clearance() float64
}

// Result of a ground probe. A rejected probe is a normal outcome, not an error.
type Result struct {
	Z        float64
	Median   float64
	Rejected bool
}

// Locator probes the ground with the downward camera.
type Locator struct {
	session       simulator.Session
	clearance     ClearanceSource
	maxStartDepth float64
}

// NewLocator creates a Locator. A non-positive maxStartDepth selects DefaultMaxStartDepth.
func NewLocator(session simulator.Session, clearance ClearanceSource, maxStartDepth float64) *Locator {
	if maxStartDepth <= 0 {
		maxStartDepth = DefaultMaxStartDepth
	}
	return &Locator{session: session, clearance: clearance, maxStartDepth: maxStartDepth}
}

// Locate moves the camera to (x, y) at the profile's probe altitude, measures the
// distance to the ground below and returns the start altitude just above it.
func (l *Locator) Locate(ctx context.Context, p scene.Profile, x, y float64) (Result, error) {
	probe := core.Pose{Position: core.Position3D{X: x, Y: y, Z: -p.ProbeAltitude}}
	if err := l.session.SetVehiclePose(ctx, probe, true); err != nil {
		return Result{}, fmt.Errorf("failed to move to probe position: %w", err)
	}
	if err := util.Sleep(ctx, p.Pause); err != nil {
		return Result{}, err
	}

	responses, err := l.session.GetImages(ctx, []simulator.ImageRequest{{
		CameraName:    simulator.CameraBottomCenter,
		ImageType:     simulator.ImageDepthPlanar,
		PixelsAsFloat: true,
	}})
	if err != nil {
		return Result{}, fmt.Errorf("failed to read ground depth: %w", err)
	}
	if len(responses) == 0 {
		return Result{}, fmt.Errorf("failed to read ground depth: %w", simulator.ErrNoImages)
	}
	resp := responses[0]

	median, err := CenterMedian(resp.ImageDataFloat, resp.Width, resp.Height)
	if err != nil {
		return Result{}, err
	}

	z := -p.ProbeAltitude + median - l.clearance.Clearance()
	return Result{Z: z, Median: median, Rejected: z > l.maxStartDepth}, nil
}

// CenterMedian returns the median of the central 20% x 20% window of a row-major
// depth buffer: rows [int(0.4H), int(0.6H)) and columns [int(0.4W), int(0.6W)).
func CenterMedian(data []float32, width, height int) (float64, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return 0, fmt.Errorf("depth buffer of %d values does not fit %dx%d", len(data), width, height)
	}
	r0, r1 := int(0.4*float64(height)), int(0.6*float64(height))
	c0, c1 := int(0.4*float64(width)), int(0.6*float64(width))
	if r1 <= r0 || c1 <= c0 {
		return 0, fmt.Errorf("depth buffer %dx%d too small for a center window", width, height)
	}

	window := make([]float64, 0, (r1-r0)*(c1-c0))
	for y := r0; y < r1; y++ {
		for x := c0; x < c1; x++ {
			window = append(window, float64(data[y*width+x]))
		}
	}
	return util.Median(window), nil
}
