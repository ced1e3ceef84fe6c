// pkg/core/sequence.go
package core

import "time"

// Frame is an RGB image stored channel-major: Pix[c*H*W + y*W + x].
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a black 3-channel frame.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height, Pix: make([]uint8, 3*width*height)}
}

// At returns channel c of pixel (x, y).
func (f Frame) At(c, x, y int) uint8 {
	return f.Pix[c*f.Width*f.Height+y*f.Width+x]
}

// DepthMap is a planar depth buffer stored row-major: Data[y*W + x].
type DepthMap struct {
	Width  int
	Height int
	Data   []float64
}

// At returns the depth at pixel (x, y).
func (d DepthMap) At(x, y int) float64 {
	return d.Data[y*d.Width+x]
}

// Clip is a stack of equally sized frames.
type Clip []Frame

// Shape returns (frames, channels, height, width). An empty clip has shape (0, 3, 0, 0).
func (c Clip) Shape() (int, int, int, int) {
	if len(c) == 0 {
		return 0, 3, 0, 0
	}
	return len(c), 3, c[0].Height, c[0].Width
}

// Bytes flattens the clip in (T, C, H, W) order.
func (c Clip) Bytes() []byte {
	if len(c) == 0 {
		return nil
	}
	out := make([]byte, 0, len(c)*len(c[0].Pix))
	for _, f := range c {
		out = append(out, f.Pix...)
	}
	return out
}

// Sequence is a recorded trial: the label row plus its clips and the midpoint depth map.
type Sequence struct {
	Index     int
	Labels    Labels
	Video     Clip
	Short     Clip
	Depth     DepthMap
	Path      []Pose
	TimeOfDay string
}

// Run describes one invocation of the generator.
type Run struct {
	ID          string
	Environment string
	StartTime   time.Time
	OutputDir   string
	SeqLen      int
	ShortSeqLen int
	FrameSize   int
	FPS         float64
	Trials      int
	Seed        uint64

	// Settings records the configuration the run was started with.
	Settings map[string]any
}
