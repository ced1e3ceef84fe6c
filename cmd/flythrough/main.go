package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OCAP2/flythrough/internal/config"
	"github.com/OCAP2/flythrough/internal/logging"
	"github.com/OCAP2/flythrough/internal/monitor"
	"github.com/OCAP2/flythrough/internal/runinfo"
	"github.com/OCAP2/flythrough/internal/runner"
	"github.com/OCAP2/flythrough/internal/sampler"
	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/internal/simulator"
	"github.com/OCAP2/flythrough/internal/storage"
	"github.com/OCAP2/flythrough/internal/util"
	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"
)

const appName = "flythrough"

var (
	// SlogManager handles all slog-based logging
	SlogManager = logging.NewSlogManager()

	// Logger is the slog logger (convenience reference)
	Logger = SlogManager.Logger()

	RunInfo = runinfo.NewContext()

	SessionStartTime = time.Now()
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		Logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	fs := newFlagSet(&opts)
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, errNoEnvironment) {
			fs.Usage()
		}
		return err
	}

	if err := config.Load(opts.configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	env := viper.GetString("env")
	profile, err := scene.BoundsFor(env)
	if err != nil {
		return err
	}

	captureCfg := config.GetCaptureConfig()
	if err := captureCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if captureCfg.Seed == 0 {
		captureCfg.Seed = uint64(SessionStartTime.UnixNano())
	}

	runDir := util.RunDir(viper.GetString("outPath"), profile.Name, SessionStartTime)
	if err := util.EnsureDir(runDir); err != nil {
		return err
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	runID := uuid.NewString()
	RunInfo.SetRun(runID, profile.Name)
	Logger.Info("Starting up...", "version", Version, "buildDate", BuildDate, "runDir", runDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	simCfg := config.GetSimulatorConfig()
	session, err := simulator.Dial(ctx, simulator.Config{
		Address:     simCfg.Address,
		VehicleName: simCfg.VehicleName,
		CallTimeout: simCfg.CallTimeout,
	})
	if err != nil {
		return err
	}
	defer session.Close()
	Logger.Info("Connected to simulator", "address", simCfg.Address)

	backend, err := initStorage(runDir)
	if err != nil {
		return err
	}
	var status *monitor.Service
	defer func() { shutdown(backend, status) }()

	metrics := initInflux(ctx, runDir)
	if metrics != nil {
		defer func() {
			if err := metrics.Close(); err != nil {
				Logger.Warn("Failed to close InfluxDB client", "error", err)
			}
		}()
	}

	policy := sampler.DefaultPolicy()
	policy.MaxSpeed = captureCfg.MaxSpeed

	r, err := runner.New(runner.Config{
		Environment:        profile.Name,
		Trials:             captureCfg.Trials,
		SeqLen:             captureCfg.SeqLen,
		ShortSeqLen:        captureCfg.ShortSeqLen,
		FPS:                captureCfg.FPS,
		FrameSize:          captureCfg.FrameSize,
		CollisionThreshold: captureCfg.CollisionThreshold,
		MaxStartDepth:      captureCfg.MaxStartDepth,
		ProgressEvery:      captureCfg.ProgressEvery,
		SaveImages:         viper.GetBool("saveImages"),
		RunDir:             runDir,
		Seed:               captureCfg.Seed,
		Policy:             policy,
	}, runner.Dependencies{
		Session:    session,
		Storage:    backend,
		LogManager: SlogManager,
		RunInfo:    RunInfo,
		Influx:     metrics,
	})
	if err != nil {
		return err
	}

	status = monitor.NewService(monitor.Dependencies{
		LogManager: SlogManager,
		RunDir:     runDir,
		Snapshot:   statusSource(runID, profile.Name, captureCfg.Trials, r, backend),
	})
	if err := status.Start(); err != nil {
		status = nil
		return err
	}

	_, err = r.Run(ctx, &core.Run{
		ID:          runID,
		Environment: profile.Name,
		StartTime:   SessionStartTime,
		OutputDir:   runDir,
		SeqLen:      captureCfg.SeqLen,
		ShortSeqLen: captureCfg.ShortSeqLen,
		FrameSize:   captureCfg.FrameSize,
		FPS:         captureCfg.FPS,
		Trials:      captureCfg.Trials,
		Seed:        captureCfg.Seed,
		Settings:    runSettings(captureCfg),
	})
	if errors.Is(err, context.Canceled) {
		Logger.Warn("Run interrupted, closing output")
	}
	return err
}

// setupLogging routes logs to the console, the run log file and optionally Graylog.
func setupLogging() (func(), error) {
	logsDir := viper.GetString("logsDir")
	if err := util.EnsureDir(logsDir); err != nil {
		return nil, err
	}
	logPath := logging.LogFilePath(logsDir, appName, SessionStartTime)
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	var graylog io.Writer
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, appName)
		if err != nil {
			Logger.Warn("Graylog disabled", "error", err, "address", gl.Address)
		} else {
			graylog = w
		}
	}

	SlogManager.Setup(logging.Options{
		Level:   viper.GetString("logLevel"),
		Format:  viper.GetString("logFormat"),
		Console: os.Stdout,
		File:    logFile,
		Graylog: graylog,
		Context: RunInfo.Attrs,
	})
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)

	return func() { _ = logFile.Close() }, nil
}

// statusSource reports the runner's progress and the storage write queue.
func statusSource(runID, env string, total int, r *runner.Runner, backend storage.Backend) func() monitor.Status {
	pending, _ := backend.(interface{ Pending() int })
	return func() monitor.Status {
		p := r.Progress()
		st := monitor.Status{
			RunID:       runID,
			Environment: env,
			Trials:      p.Trials,
			Total:       total,
			Recorded:    p.Recorded,
			Collided:    p.Collided,
			Rejected:    p.Rejected,
			Dumped:      p.Dumped,
			Elapsed:     p.Duration.Round(time.Second).String(),
		}
		if p.Duration > 0 {
			st.Rate = float64(p.Trials) / p.Duration.Seconds()
		}
		if pending != nil {
			st.Pending = pending.Pending()
		}
		return st
	}
}

// runSettings is the capture configuration stored with the run.
func runSettings(c config.CaptureConfig) map[string]any {
	return map[string]any{
		"trials":             c.Trials,
		"seqLen":             c.SeqLen,
		"shortSeqLen":        c.ShortSeqLen,
		"fps":                c.FPS,
		"frameSize":          c.FrameSize,
		"maxSpeed":           c.MaxSpeed,
		"collisionThreshold": c.CollisionThreshold,
		"maxStartDepth":      c.MaxStartDepth,
		"seed":               c.Seed,
		"saveImages":         viper.GetBool("saveImages"),
	}
}
