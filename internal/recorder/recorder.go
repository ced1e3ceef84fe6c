// Package recorder decides whether a finished capture becomes a persisted sequence.
package recorder

import (
	"errors"
	"fmt"

	"github.com/OCAP2/flythrough/internal/capture"
	"github.com/OCAP2/flythrough/pkg/core"
)

// ErrShortCapture is returned when a successful capture holds fewer frames than
// the configured sequence length.
var ErrShortCapture = errors.New("capture is shorter than the sequence length")

// Recorder builds sequence records from capture results.
type Recorder struct {
	seqLen      int
	shortSeqLen int
}

// New creates a Recorder for sequences of seqLen frames with a centered short
// clip of shortSeqLen frames.
func New(seqLen, shortSeqLen int) (*Recorder, error) {
	if seqLen <= 0 {
		return nil, fmt.Errorf("sequence length must be positive, got %d", seqLen)
	}
	if shortSeqLen <= 0 || shortSeqLen > seqLen {
		return nil, fmt.Errorf("short sequence length must be in [1, %d], got %d", seqLen, shortSeqLen)
	}
	return &Recorder{seqLen: seqLen, shortSeqLen: shortSeqLen}, nil
}

// ShortWindow returns the half-open frame range [start, end) of the short clip.
// For an odd difference between the lengths the window sits one frame early.
func (r *Recorder) ShortWindow() (start, end int) {
	start = (r.seqLen - r.shortSeqLen) / 2
	return start, start + r.shortSeqLen
}

// DepthIndex returns the step whose depth map is kept.
func (r *Recorder) DepthIndex() int {
	return r.seqLen / 2
}

// Finalize returns the sequence to persist, or nil when the trial collided or
// images are being dumped instead of recorded. A nil record is not an error.
func (r *Recorder) Finalize(cfg core.TrialConfig, res capture.Result, dumpRequested bool) (*core.Sequence, error) {
	if res.Collided() || dumpRequested {
		return nil, nil
	}
	if res.Steps() != r.seqLen || len(res.Depths) != r.seqLen {
		return nil, fmt.Errorf("%w: got %d frames, want %d", ErrShortCapture, res.Steps(), r.seqLen)
	}

	start, end := r.ShortWindow()
	video := make(core.Clip, r.seqLen)
	copy(video, res.Frames)

	return &core.Sequence{
		Labels: cfg.Labels(),
		Video:  video,
		Short:  video[start:end:end],
		Depth:  res.Depths[r.DepthIndex()],
		Path:   append([]core.Pose(nil), res.Poses...),
	}, nil
}
