// Package util provides small helpers shared across the generator.
package util

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// TimestampLayout is the local-time stamp used for run directories and log files:
// ISO 8601 without colons or fractional seconds, so it is safe in file names.
const TimestampLayout = "2006-01-02T150405"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// RunDir returns <outPath>/<env>/<timestamp>.
func RunDir(outPath, env string, start time.Time) string {
	return filepath.Join(outPath, env, Timestamp(start))
}

// EnsureDir creates dir and its parents. An existing directory is not an error,
// but an existing file at that path is.
func EnsureDir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return fmt.Errorf("failed to create directory %s: %w", dir, err)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Median returns the median of values, averaging the two middle values for an
// even count. values is sorted in place. The median of an empty slice is 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sort.Float64s(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
