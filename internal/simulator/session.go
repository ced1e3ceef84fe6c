// internal/simulator/session.go
package simulator

import (
	"context"
	"errors"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"
)

// ErrNoImages is returned when the simulator answers an image request with an empty list.
var ErrNoImages = errors.New("simulator returned no images")

// Session is a connection to a running simulator. All calls block until the
// simulator answers or ctx is done.
type Session interface {
	Ping(ctx context.Context) error
	SetVehiclePose(ctx context.Context, pose core.Pose, ignoreCollision bool) error
	GetImages(ctx context.Context, requests []ImageRequest) ([]ImageResponse, error)
	EnableWeather(ctx context.Context, enabled bool) error
	SetWeatherParameter(ctx context.Context, param scene.WeatherParameter, value float32) error
	SetTimeOfDay(ctx context.Context, tod TimeOfDay) error
	Close() error
}

// ResetPose moves the vehicle back to the origin with zero orientation.
// reset is not available in ComputerVision mode, so this stands in for it.
func ResetPose(ctx context.Context, s Session) error {
	return s.SetVehiclePose(ctx, core.Pose{}, true)
}

// ApplyWeather enables weather, clears every parameter and applies the profile overlays.
// Profiles without weather are left untouched.
func ApplyWeather(ctx context.Context, s Session, p scene.Profile) error {
	if !p.Weather {
		return nil
	}
	if err := s.EnableWeather(ctx, true); err != nil {
		return err
	}
	for param := scene.WeatherParameter(0); param < scene.WeatherParameterCount; param++ {
		if err := s.SetWeatherParameter(ctx, param, 0); err != nil {
			return err
		}
	}
	for _, o := range p.Overlays {
		if err := s.SetWeatherParameter(ctx, o.Parameter, o.Intensity); err != nil {
			return err
		}
	}
	return nil
}
