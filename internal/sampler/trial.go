package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"

	"gonum.org/v1/gonum/stat/distuv"
)

// Concentrations of the heading offset draws. The pitch offset is kept much
// narrower than the yaw offset.
const (
	HeadingYawConcentration   = 2.5
	HeadingPitchConcentration = 16
)

// Policy holds the fixed constants of the sampling policy.
type Policy struct {
	// MaxSpeed caps the forward speed, m/s. 3 m/s is a jog.
	MaxSpeed float64
	// PitchSpread bounds the base pitch to [-PitchSpread, PitchSpread).
	PitchSpread float64
	// RotationYawSigma and RotationPitchSigma are the standard deviations of the
	// angular rates, rad/s.
	RotationYawSigma   float64
	RotationPitchSigma float64
	// Clearance is the range of the height above ground the platform flies at.
	ClearanceMin float64
	ClearanceMax float64
	// Hours of the day drawn for the time-of-day setting, inclusive.
	FirstHour int
	LastHour  int
}

// DefaultPolicy returns the policy used for dataset generation.
func DefaultPolicy() Policy {
	return Policy{
		MaxSpeed:           3,
		PitchSpread:        0.25,
		RotationYawSigma:   30 * math.Pi / 180,
		RotationPitchSigma: 10 * math.Pi / 180,
		ClearanceMin:       1.4,
		ClearanceMax:       2,
		FirstHour:          5,
		LastHour:           20,
	}
}

// Sampler draws trial configurations from a single seeded source.
// It is not safe for concurrent use; a run owns exactly one.
type Sampler struct {
	src    rand.Source
	rng    *rand.Rand
	policy Policy
}

// New creates a sampler seeded with seed.
func New(seed uint64, policy Policy) *Sampler {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Sampler{
		src:    src,
		rng:    rand.New(src),
		policy: policy,
	}
}

func (s *Sampler) uniform(r scene.Range) float64 {
	return distuv.Uniform{Min: r.Min, Max: r.Max, Src: s.src}.Rand()
}

// StartPosition draws a horizontal start position inside the profile's region.
func (s *Sampler) StartPosition(p scene.Profile) (x, y float64) {
	u := s.uniform(p.XRange)
	v := s.uniform(p.YRange)
	return p.Position(u, v)
}

// Hour draws the hour used for the time-of-day setting.
func (s *Sampler) Hour() int {
	return s.policy.FirstHour + s.rng.IntN(s.policy.LastHour-s.policy.FirstHour+1)
}

// Clearance draws the flight height above ground.
func (s *Sampler) Clearance() float64 {
	return s.uniform(scene.Range{Min: s.policy.ClearanceMin, Max: s.policy.ClearanceMax})
}

// Motion draws everything but the start position: orientation, heading offset,
// angular rates and speed. X, Y and Z of the result are zero.
func (s *Sampler) Motion() (core.TrialConfig, error) {
	var cfg core.TrialConfig
	var err error

	// Sometimes a little up, sometimes a little down.
	cfg.Pitch = s.uniform(scene.Range{Min: -s.policy.PitchSpread, Max: s.policy.PitchSpread})
	cfg.Yaw = s.uniform(scene.Range{Min: -math.Pi, Max: math.Pi})

	cfg.HeadingYaw, err = DrawBiasedAngle(s.src, HeadingYawConcentration)
	if err != nil {
		return core.TrialConfig{}, fmt.Errorf("heading yaw: %w", err)
	}
	cfg.HeadingPitch, err = DrawBiasedAngle(s.src, HeadingPitchConcentration)
	if err != nil {
		return core.TrialConfig{}, fmt.Errorf("heading pitch: %w", err)
	}

	cfg.RotationYaw = distuv.Normal{Mu: 0, Sigma: s.policy.RotationYawSigma, Src: s.src}.Rand()
	cfg.RotationPitch = distuv.Normal{Mu: 0, Sigma: s.policy.RotationPitchSigma, Src: s.src}.Rand()
	cfg.Speed = s.policy.MaxSpeed * s.rng.Float64()

	return cfg, nil
}
