package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OCAP2/flythrough/internal/config"
	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flag name -> viper key
var flagKeys = map[string]string{
	"env":         "env",
	"save-images": "saveImages",
	"out-path":    "outPath",
	"trials":      "capture.trials",
	"seed":        "capture.seed",
	"geo-origin":  "geo.origin",
}

var errNoEnvironment = errors.New("--env is required")

// options holds the flags that are not configuration keys.
type options struct {
	configDir string
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s --env <name> [flags]\n\nEnvironments: %s\n\nFlags:\n",
			appName, strings.Join(scene.Names(), ", "))
		fs.PrintDefaults()
	}

	fs.String("env", "", "simulator environment to sample (required)")
	fs.Bool("save-images", false, "write every frame as WebP instead of recording sequences")
	fs.String("out-path", "../../data/raw/", "root directory for run output")
	fs.Int("trials", 3600, "number of trials")
	fs.Uint64("seed", 0, "sampling seed; 0 draws one from the clock")
	fs.String("geo-origin", "", "WGS84 \"lon,lat\" of the simulator origin; enables geotags")
	fs.StringVar(&opts.configDir, "config-dir", ".", "directory holding "+config.FileName)
	return fs
}

// parseFlags parses args and binds the flags into viper.
func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	if viper.GetString("env") == "" {
		return errNoEnvironment
	}
	return nil
}
