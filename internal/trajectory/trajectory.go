// Package trajectory turns a trial configuration into the pose sequence flown by the camera.
package trajectory

import (
	"math"

	"github.com/OCAP2/flythrough/pkg/core"
)

// StepTime returns the time of step k in an n-step sequence at fps frames per
// second. The middle of the sequence is t=0, so earlier steps have negative times.
func StepTime(k, n int, fps float64) float64 {
	return (float64(k) - float64(n-1)/2) / fps
}

// PoseAt returns the pose at time t: straight-line constant-velocity motion along
// the heading direction and linear pitch/yaw rotation. Roll stays zero.
func PoseAt(cfg core.TrialConfig, t float64) core.Pose {
	d := t * cfg.Speed
	heading := cfg.Yaw + cfg.HeadingYaw
	elevation := cfg.Pitch + cfg.HeadingPitch

	return core.Pose{
		Position: core.Position3D{
			X: cfg.X + d*math.Cos(heading)*math.Cos(elevation),
			Y: cfg.Y + d*math.Sin(heading)*math.Cos(elevation),
			Z: cfg.Z + d*math.Sin(elevation),
		},
		Orientation: core.Orientation{
			Pitch: cfg.Pitch + t*cfg.RotationPitch,
			Roll:  0,
			Yaw:   cfg.Yaw + t*cfg.RotationYaw,
		},
	}
}

// GeneratePoses returns exactly n poses, one per step, sampled at fps.
func GeneratePoses(cfg core.TrialConfig, n int, fps float64) []core.Pose {
	if n <= 0 {
		return nil
	}
	poses := make([]core.Pose, n)
	for k := range poses {
		poses[k] = PoseAt(cfg, StepTime(k, n, fps))
	}
	return poses
}
