// pkg/core/trial.go
package core

// TrialConfig is the randomized start configuration of one trial.
// The start position is the midpoint of the generated sequence, not its first sample.
type TrialConfig struct {
	X     float64
	Y     float64
	Z     float64
	Yaw   float64
	Pitch float64
	Roll  float64 // always 0

	Speed float64

	HeadingYaw   float64
	HeadingPitch float64

	RotationYaw   float64
	RotationPitch float64
}

// Labels is the persisted label row of a sequence.
type Labels struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Z             float64 `json:"z"`
	Yaw           float64 `json:"yaw"`
	Pitch         float64 `json:"pitch"`
	Speed         float64 `json:"speed"`
	HeadingYaw    float64 `json:"heading_yaw"`
	HeadingPitch  float64 `json:"heading_pitch"`
	RotationYaw   float64 `json:"rotation_yaw"`
	RotationPitch float64 `json:"rotation_pitch"`
}

// Labels returns the label row for this configuration.
func (c TrialConfig) Labels() Labels {
	return Labels{
		X:             c.X,
		Y:             c.Y,
		Z:             c.Z,
		Yaw:           c.Yaw,
		Pitch:         c.Pitch,
		Speed:         c.Speed,
		HeadingYaw:    c.HeadingYaw,
		HeadingPitch:  c.HeadingPitch,
		RotationYaw:   c.RotationYaw,
		RotationPitch: c.RotationPitch,
	}
}

// TrialConfig rebuilds the configuration a label row was produced from.
// Roll is not stored because it is always zero.
func (l Labels) TrialConfig() TrialConfig {
	return TrialConfig{
		X:             l.X,
		Y:             l.Y,
		Z:             l.Z,
		Yaw:           l.Yaw,
		Pitch:         l.Pitch,
		Speed:         l.Speed,
		HeadingYaw:    l.HeadingYaw,
		HeadingPitch:  l.HeadingPitch,
		RotationYaw:   l.RotationYaw,
		RotationPitch: l.RotationPitch,
	}
}
