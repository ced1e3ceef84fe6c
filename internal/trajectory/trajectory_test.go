package trajectory

import (
	"math"
	"testing"

	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig() core.TrialConfig {
	return core.TrialConfig{
		X:             12.5,
		Y:             -3.25,
		Z:             -1.7,
		Yaw:           0.8,
		Pitch:         -0.1,
		Speed:         2.4,
		HeadingYaw:    0.3,
		HeadingPitch:  0.05,
		RotationYaw:   0.4,
		RotationPitch: -0.12,
	}
}

func TestGeneratePoses_Length(t *testing.T) {
	cfg := sampleConfig()
	for _, n := range []int{1, 2, 10, 39, 40} {
		assert.Len(t, GeneratePoses(cfg, n, 30), n)
	}
	assert.Empty(t, GeneratePoses(cfg, 0, 30))
}

func TestGeneratePoses_MiddleIsStartPose(t *testing.T) {
	cfg := sampleConfig()
	poses := GeneratePoses(cfg, 41, 30)
	mid := poses[20]

	assert.Equal(t, 0.0, StepTime(20, 41, 30))
	assert.InDelta(t, cfg.X, mid.Position.X, 1e-12)
	assert.InDelta(t, cfg.Y, mid.Position.Y, 1e-12)
	assert.InDelta(t, cfg.Z, mid.Position.Z, 1e-12)
	assert.InDelta(t, cfg.Pitch, mid.Orientation.Pitch, 1e-12)
	assert.InDelta(t, cfg.Yaw, mid.Orientation.Yaw, 1e-12)
}

func TestGeneratePoses_EvenLengthIsSymmetric(t *testing.T) {
	cfg := sampleConfig()
	poses := GeneratePoses(cfg, 40, 30)

	assert.InDelta(t, -19.5/30, StepTime(0, 40, 30), 1e-12)
	assert.InDelta(t, 19.5/30, StepTime(39, 40, 30), 1e-12)

	// Steps 19 and 20 straddle t=0, so their midpoint is the start position.
	midX := (poses[19].Position.X + poses[20].Position.X) / 2
	midZ := (poses[19].Position.Z + poses[20].Position.Z) / 2
	assert.InDelta(t, cfg.X, midX, 1e-12)
	assert.InDelta(t, cfg.Z, midZ, 1e-12)
}

func TestGeneratePoses_ConstantVelocity(t *testing.T) {
	cfg := sampleConfig()
	poses := GeneratePoses(cfg, 40, 30)

	step := cfg.Speed / 30
	for k := 1; k < len(poses); k++ {
		dx := poses[k].Position.X - poses[k-1].Position.X
		dy := poses[k].Position.Y - poses[k-1].Position.Y
		dz := poses[k].Position.Z - poses[k-1].Position.Z
		assert.InDelta(t, step, math.Sqrt(dx*dx+dy*dy+dz*dz), 1e-9)
		assert.InDelta(t, cfg.RotationYaw/30, poses[k].Orientation.Yaw-poses[k-1].Orientation.Yaw, 1e-12)
		assert.InDelta(t, cfg.RotationPitch/30, poses[k].Orientation.Pitch-poses[k-1].Orientation.Pitch, 1e-12)
	}
}

func TestGeneratePoses_NeverRolls(t *testing.T) {
	cfg := sampleConfig()
	cfg.Roll = 0.7
	for _, p := range GeneratePoses(cfg, 40, 30) {
		assert.Zero(t, p.Orientation.Roll)
	}
}

func TestGeneratePoses_RoundTripThroughLabels(t *testing.T) {
	cfg := sampleConfig()
	want := GeneratePoses(cfg, 40, 30)
	got := GeneratePoses(cfg.Labels().TrialConfig(), 40, 30)
	require.Equal(t, want, got)
}
