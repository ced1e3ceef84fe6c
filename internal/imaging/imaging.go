// Package imaging converts simulator buffers into frames and depth maps.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/OCAP2/flythrough/pkg/core"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// FrameFromBGR converts an interleaved BGR or BGRA buffer into a channel-major RGB frame.
func FrameFromBGR(data []byte, width, height int) (core.Frame, error) {
	n := width * height
	if n <= 0 {
		return core.Frame{}, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	if len(data)%n != 0 {
		return core.Frame{}, fmt.Errorf("image buffer of %d bytes does not fit %dx%d", len(data), width, height)
	}
	stride := len(data) / n
	if stride != 3 && stride != 4 {
		return core.Frame{}, fmt.Errorf("unsupported pixel stride %d", stride)
	}

	f := core.NewFrame(width, height)
	for i := 0; i < n; i++ {
		px := data[i*stride:]
		f.Pix[i] = px[2]
		f.Pix[n+i] = px[1]
		f.Pix[2*n+i] = px[0]
	}
	return f, nil
}

// DepthFromFloat converts a row-major float buffer into a depth map.
func DepthFromFloat(data []float32, width, height int) (core.DepthMap, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return core.DepthMap{}, fmt.Errorf("depth buffer of %d values does not fit %dx%d", len(data), width, height)
	}
	d := core.DepthMap{Width: width, Height: height, Data: make([]float64, len(data))}
	for i, v := range data {
		d.Data[i] = float64(v)
	}
	return d, nil
}

// ToImage converts a frame into an opaque RGBA image.
func ToImage(f core.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	n := f.Width * f.Height
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := y*f.Width + x
			img.SetRGBA(x, y, color.RGBA{R: f.Pix[i], G: f.Pix[n+i], B: f.Pix[2*n+i], A: 0xff})
		}
	}
	return img
}

// FromImage converts any image into a channel-major RGB frame.
func FromImage(img image.Image) core.Frame {
	b := img.Bounds()
	f := core.NewFrame(b.Dx(), b.Dy())
	n := f.Width * f.Height
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			i := y*f.Width + x
			f.Pix[i] = c.R
			f.Pix[n+i] = c.G
			f.Pix[2*n+i] = c.B
		}
	}
	return f
}

// ResizeFrame scales a frame to size x size. Frames already at that size are returned as is.
func ResizeFrame(f core.Frame, size int) core.Frame {
	if f.Width == size && f.Height == size {
		return f
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), ToImage(f), image.Rect(0, 0, f.Width, f.Height), draw.Src, nil)
	return FromImage(dst)
}

// ResizeDepth scales a depth map to size x size with nearest-neighbour sampling,
// so no depth value is interpolated across an edge.
func ResizeDepth(d core.DepthMap, size int) core.DepthMap {
	if d.Width == size && d.Height == size {
		return d
	}
	out := core.DepthMap{Width: size, Height: size, Data: make([]float64, size*size)}
	for y := 0; y < size; y++ {
		sy := y * d.Height / size
		for x := 0; x < size; x++ {
			sx := x * d.Width / size
			out.Data[y*size+x] = d.Data[sy*d.Width+sx]
		}
	}
	return out
}

// WriteWebP writes a frame to path as a lossless WebP image.
func WriteWebP(path string, f core.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := nativewebp.Encode(file, ToImage(f), nil); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}
