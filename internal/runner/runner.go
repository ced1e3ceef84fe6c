// Package runner drives the trial loop: it samples a start, probes the ground,
// flies the trajectory and hands finished sequences to the output sink.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/OCAP2/flythrough/internal/capture"
	"github.com/OCAP2/flythrough/internal/ground"
	"github.com/OCAP2/flythrough/internal/imaging"
	"github.com/OCAP2/flythrough/internal/influx"
	"github.com/OCAP2/flythrough/internal/logging"
	"github.com/OCAP2/flythrough/internal/recorder"
	"github.com/OCAP2/flythrough/internal/runinfo"
	"github.com/OCAP2/flythrough/internal/sampler"
	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/internal/simulator"
	"github.com/OCAP2/flythrough/internal/storage"
	"github.com/OCAP2/flythrough/internal/trajectory"
	"github.com/OCAP2/flythrough/internal/util"
	"github.com/OCAP2/flythrough/pkg/core"
	"go.opentelemetry.io/otel/metric"
)

// Outcome is how a trial ended.
type Outcome string

const (
	OutcomeRecorded Outcome = "recorded"
	OutcomeCollided Outcome = "collided"
	OutcomeRejected Outcome = "rejected"
	OutcomeDumped   Outcome = "dumped"
)

// resetTimeout bounds the final pose reset, which also runs after cancellation.
const resetTimeout = 5 * time.Second

// Config holds the run settings.
type Config struct {
	Environment        string
	Trials             int
	SeqLen             int
	ShortSeqLen        int
	FPS                float64
	FrameSize          int
	CollisionThreshold float64
	MaxStartDepth      float64
	// ProgressEvery logs a progress line every N trials. Zero disables it.
	ProgressEvery int
	// SaveImages writes every frame as WebP into RunDir instead of recording sequences.
	SaveImages bool
	RunDir     string
	Seed       uint64
	Policy     sampler.Policy
}

// Dependencies holds the collaborators of a Runner. Influx, RunInfo and Meter are optional.
type Dependencies struct {
	Session    simulator.Session
	Storage    storage.Backend
	LogManager *logging.SlogManager
	RunInfo    *runinfo.Context
	Influx     *influx.Manager
	Meter      metric.Meter
}

// Summary counts trial outcomes.
type Summary struct {
	Trials   int
	Recorded int
	Collided int
	Rejected int
	Dumped   int
	Duration time.Duration
}

func (s *Summary) add(o Outcome) {
	s.Trials++
	switch o {
	case OutcomeRecorded:
		s.Recorded++
	case OutcomeCollided:
		s.Collided++
	case OutcomeRejected:
		s.Rejected++
	case OutcomeDumped:
		s.Dumped++
	}
}

// Runner executes the trials of one run. It is not safe for concurrent use.
type Runner struct {
	cfg      Config
	deps     Dependencies
	log      *slog.Logger
	sampler  *sampler.Sampler
	recorder *recorder.Recorder
	metrics  *instruments

	mu       sync.Mutex
	progress Summary
}

// Progress returns the outcome counts so far. It may be called from other goroutines.
func (r *Runner) Progress() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

func (r *Runner) publish(s Summary) {
	r.mu.Lock()
	r.progress = s
	r.mu.Unlock()
}

// New validates cfg and creates a Runner.
func New(cfg Config, deps Dependencies) (*Runner, error) {
	if deps.Session == nil {
		return nil, errors.New("runner: no simulator session")
	}
	if deps.Storage == nil {
		return nil, errors.New("runner: no storage backend")
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("runner: fps must be positive, got %v", cfg.FPS)
	}
	rec, err := recorder.New(cfg.SeqLen, cfg.ShortSeqLen)
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.RunInfo == nil {
		deps.RunInfo = runinfo.NewContext()
	}
	if deps.Meter == nil {
		deps.Meter = meter()
	}
	in, err := newInstruments(deps.Meter)
	if err != nil {
		return nil, err
	}
	if cfg.Policy == (sampler.Policy{}) {
		cfg.Policy = sampler.DefaultPolicy()
	}

	return &Runner{
		cfg:      cfg,
		deps:     deps,
		log:      deps.LogManager.Logger(),
		sampler:  sampler.New(cfg.Seed, cfg.Policy),
		recorder: rec,
		metrics:  in,
	}, nil
}

// Run executes every trial. The environment is resolved before the simulator is
// touched, so an unknown name fails without any simulator traffic.
// The output sink is started here but closed by the caller.
func (r *Runner) Run(ctx context.Context, run *core.Run) (Summary, error) {
	var summary Summary
	started := time.Now()

	profile, err := scene.BoundsFor(r.cfg.Environment)
	if err != nil {
		return summary, err
	}
	r.deps.RunInfo.SetRun(run.ID, profile.Name)

	session := r.deps.Session
	if err := session.Ping(ctx); err != nil {
		return summary, fmt.Errorf("failed to reach simulator: %w", err)
	}
	if err := simulator.ApplyWeather(ctx, session, profile); err != nil {
		return summary, fmt.Errorf("failed to apply weather: %w", err)
	}
	if err := r.deps.Storage.StartRun(run, profile); err != nil {
		return summary, fmt.Errorf("failed to start run: %w", err)
	}

	r.log.Info("Run started",
		"trials", r.cfg.Trials,
		"seqLen", r.cfg.SeqLen,
		"shortSeqLen", r.cfg.ShortSeqLen,
		"saveImages", r.cfg.SaveImages,
		"seed", r.cfg.Seed,
	)

	locator := ground.NewLocator(session, r.sampler, r.cfg.MaxStartDepth)
	for trial := 0; trial < r.cfg.Trials; trial++ {
		if err = ctx.Err(); err != nil {
			break
		}
		r.deps.RunInfo.SetTrial(trial)

		var outcome Outcome
		outcome, err = r.trial(ctx, trial, profile, locator, summary.Recorded)
		if err != nil {
			err = fmt.Errorf("trial %d: %w", trial, err)
			break
		}
		summary.add(outcome)
		summary.Duration = time.Since(started)
		r.publish(summary)

		if r.cfg.ProgressEvery > 0 && (trial+1)%r.cfg.ProgressEvery == 0 {
			r.log.Info("Progress",
				"done", trial+1,
				"total", r.cfg.Trials,
				"recorded", summary.Recorded,
				"collided", summary.Collided,
				"rejected", summary.Rejected,
				"elapsed", time.Since(started).Round(time.Second),
			)
		}
	}
	r.deps.RunInfo.SetTrial(-1)

	resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
	defer cancel()
	if resetErr := simulator.ResetPose(resetCtx, session); resetErr != nil {
		r.log.Warn("Failed to reset vehicle pose", "error", resetErr)
	}

	summary.Duration = time.Since(started)
	r.publish(summary)
	r.log.Info("Run finished",
		"trials", summary.Trials,
		"recorded", summary.Recorded,
		"collided", summary.Collided,
		"rejected", summary.Rejected,
		"dumped", summary.Dumped,
		"duration", summary.Duration.Round(time.Millisecond),
	)
	return summary, err
}

// trial runs one trial. index is the row the sequence gets if it is recorded.
func (r *Runner) trial(ctx context.Context, trial int, profile scene.Profile, locator *ground.Locator, index int) (Outcome, error) {
	started := time.Now()
	session := r.deps.Session

	tod := simulator.FixedHour(r.sampler.Hour())
	if err := session.SetTimeOfDay(ctx, tod); err != nil {
		return "", fmt.Errorf("failed to set time of day: %w", err)
	}
	if err := util.Sleep(ctx, profile.Pause); err != nil {
		return "", err
	}

	x, y := r.sampler.StartPosition(profile)
	g, err := locator.Locate(ctx, profile, x, y)
	if err != nil {
		return "", err
	}
	if g.Rejected {
		r.log.Debug("Start rejected", "x", x, "y", y, "z", g.Z, "median", g.Median)
		r.finish(ctx, profile, OutcomeRejected, 0, 0, started)
		return OutcomeRejected, nil
	}

	cfg, err := r.sampler.Motion()
	if err != nil {
		return "", err
	}
	cfg.X, cfg.Y, cfg.Z = x, y, g.Z

	loop := capture.NewLoop(session, capture.Config{
		FrameSize:          r.cfg.FrameSize,
		CollisionThreshold: r.cfg.CollisionThreshold,
		Pause:              profile.Pause,
		OnFrame:            r.frameHook(trial),
	})
	res, err := loop.Capture(ctx, trajectory.GeneratePoses(cfg, r.cfg.SeqLen, r.cfg.FPS), profile.CollisionTolerant)
	if err != nil {
		return "", err
	}

	seq, err := r.recorder.Finalize(cfg, res, r.cfg.SaveImages)
	if err != nil {
		return "", err
	}
	if seq == nil {
		outcome := OutcomeDumped
		if res.Collided() {
			outcome = OutcomeCollided
			r.log.Debug("Collision", "step", res.Steps()-1, "speed", cfg.Speed)
		}
		r.finish(ctx, profile, outcome, res.Steps(), cfg.Speed, started)
		return outcome, nil
	}

	seq.Index = index
	seq.TimeOfDay = tod.StartDateTime
	if err := r.deps.Storage.AppendSequence(seq); err != nil {
		return "", fmt.Errorf("failed to store sequence: %w", err)
	}
	r.finish(ctx, profile, OutcomeRecorded, res.Steps(), cfg.Speed, started)
	return OutcomeRecorded, nil
}

// frameHook writes frames as <trial>_<step>.webp in image dump mode.
func (r *Runner) frameHook(trial int) capture.FrameHook {
	if !r.cfg.SaveImages {
		return nil
	}
	return func(step int, frame core.Frame) error {
		path := filepath.Join(r.cfg.RunDir, fmt.Sprintf("%02d_%02d.webp", trial, step))
		return imaging.WriteWebP(path, frame)
	}
}

// finish reports a trial outcome to the metric sinks.
func (r *Runner) finish(ctx context.Context, profile scene.Profile, outcome Outcome, steps int, speed float64, started time.Time) {
	took := time.Since(started)
	r.metrics.record(ctx, profile.Name, outcome, took)
	if r.deps.Influx == nil {
		return
	}
	point := influx.TrialPoint(profile.Name, string(outcome), steps, speed, took, time.Now())
	if err := r.deps.Influx.WritePoint(point); err != nil {
		r.log.Warn("Failed to write trial metrics", "error", err)
	}
}
