// internal/simulator/fake.go
package simulator

import (
	"context"
	"errors"
	"sync"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"
)

// DepthFunc returns the planar depth seen by camera at pixel (x, y) while the
// vehicle is at pose.
type DepthFunc func(camera string, pose core.Pose, x, y int) float32

// PoseCall records one SetVehiclePose command.
type PoseCall struct {
	Pose            core.Pose
	IgnoreCollision bool
}

// Fake is an in-process Session with scripted depth buffers. It renders scene
// images as a flat BGR color so frame decoding can be checked.
type Fake struct {
	Width  int
	Height int
	Depth  DepthFunc

	// Scene is the BGR color every scene pixel is rendered with.
	Scene [3]uint8

	// FailOn makes the named method return the mapped error.
	FailOn map[string]error

	mu             sync.Mutex
	pose           core.Pose
	calls          []string
	poses          []PoseCall
	weatherEnabled bool
	weather        map[scene.WeatherParameter]float32
	timesOfDay     []TimeOfDay
	closed         bool
}

// NewFake returns a Fake rendering width x height buffers at constant depth.
func NewFake(width, height int, depth float32) *Fake {
	return &Fake{
		Width:  width,
		Height: height,
		Depth: func(string, core.Pose, int, int) float32 {
			return depth
		},
		Scene:   [3]uint8{30, 60, 90},
		weather: make(map[scene.WeatherParameter]float32),
	}
}

func (f *Fake) record(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.calls = append(f.calls, method)
	if f.closed {
		return errors.New("session closed")
	}
	if err, ok := f.FailOn[method]; ok {
		return err
	}
	return nil
}

func (f *Fake) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(ctx, "ping")
}

func (f *Fake) SetVehiclePose(ctx context.Context, pose core.Pose, ignoreCollision bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "simSetVehiclePose"); err != nil {
		return err
	}
	f.pose = pose
	f.poses = append(f.poses, PoseCall{Pose: pose, IgnoreCollision: ignoreCollision})
	return nil
}

func (f *Fake) GetImages(ctx context.Context, requests []ImageRequest) ([]ImageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "simGetImages"); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrNoImages
	}

	responses := make([]ImageResponse, 0, len(requests))
	for _, req := range requests {
		resp := ImageResponse{
			CameraName:    req.CameraName,
			ImageType:     req.ImageType,
			PixelsAsFloat: req.PixelsAsFloat,
			Compress:      req.Compress,
			Width:         f.Width,
			Height:        f.Height,
		}
		if req.PixelsAsFloat {
			resp.ImageDataFloat = make([]float32, f.Width*f.Height)
			for y := 0; y < f.Height; y++ {
				for x := 0; x < f.Width; x++ {
					resp.ImageDataFloat[y*f.Width+x] = f.Depth(req.CameraName, f.pose, x, y)
				}
			}
		} else {
			resp.ImageDataUint8 = make([]byte, 0, 3*f.Width*f.Height)
			for i := 0; i < f.Width*f.Height; i++ {
				resp.ImageDataUint8 = append(resp.ImageDataUint8, f.Scene[0], f.Scene[1], f.Scene[2])
			}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (f *Fake) EnableWeather(ctx context.Context, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "simEnableWeather"); err != nil {
		return err
	}
	f.weatherEnabled = enabled
	return nil
}

func (f *Fake) SetWeatherParameter(ctx context.Context, param scene.WeatherParameter, value float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "simSetWeatherParameter"); err != nil {
		return err
	}
	if f.weather == nil {
		f.weather = make(map[scene.WeatherParameter]float32)
	}
	f.weather[param] = value
	return nil
}

func (f *Fake) SetTimeOfDay(ctx context.Context, tod TimeOfDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(ctx, "simSetTimeOfDay"); err != nil {
		return err
	}
	f.timesOfDay = append(f.timesOfDay, tod)
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Calls returns the method names invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Poses returns every pose command received so far.
func (f *Fake) Poses() []PoseCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PoseCall(nil), f.poses...)
}

// Weather reports whether weather was enabled and the current parameter values.
func (f *Fake) Weather() (bool, map[scene.WeatherParameter]float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[scene.WeatherParameter]float32, len(f.weather))
	for k, v := range f.weather {
		out[k] = v
	}
	return f.weatherEnabled, out
}

// TimesOfDay returns every time-of-day command received so far.
func (f *Fake) TimesOfDay() []TimeOfDay {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TimeOfDay(nil), f.timesOfDay...)
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var (
	_ Session = (*Client)(nil)
	_ Session = (*Fake)(nil)
)
