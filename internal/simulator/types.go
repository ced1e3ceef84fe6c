// internal/simulator/types.go
package simulator

import (
	"fmt"
	"math"

	"github.com/OCAP2/flythrough/pkg/core"

	"gonum.org/v1/gonum/num/quat"
)

// Camera names exposed by the simulator's ComputerVision vehicle.
const (
	CameraFrontCenter  = "front_center"
	CameraBottomCenter = "bottom_center"
)

// ImageType selects the buffer a camera renders.
type ImageType int

const (
	ImageScene ImageType = iota
	ImageDepthPlanar
	ImageDepthPerspective
	ImageDepthVis
	ImageDisparityNormalized
	ImageSegmentation
	ImageSurfaceNormals
	ImageInfrared
)

func (t ImageType) String() string {
	switch t {
	case ImageScene:
		return "Scene"
	case ImageDepthPlanar:
		return "DepthPlanar"
	case ImageDepthPerspective:
		return "DepthPerspective"
	case ImageDepthVis:
		return "DepthVis"
	case ImageDisparityNormalized:
		return "DisparityNormalized"
	case ImageSegmentation:
		return "Segmentation"
	case ImageSurfaceNormals:
		return "SurfaceNormals"
	case ImageInfrared:
		return "Infrared"
	default:
		return fmt.Sprintf("ImageType(%d)", int(t))
	}
}

// Vector3r is the simulator's wire vector.
type Vector3r struct {
	X float32 `codec:"x_val"`
	Y float32 `codec:"y_val"`
	Z float32 `codec:"z_val"`
}

// Quaternionr is the simulator's wire quaternion.
type Quaternionr struct {
	W float32 `codec:"w_val"`
	X float32 `codec:"x_val"`
	Y float32 `codec:"y_val"`
	Z float32 `codec:"z_val"`
}

// WirePose is a pose as sent to simSetVehiclePose.
type WirePose struct {
	Position    Vector3r    `codec:"position"`
	Orientation Quaternionr `codec:"orientation"`
}

// ImageRequest asks one camera for one buffer.
type ImageRequest struct {
	CameraName    string    `codec:"camera_name"`
	ImageType     ImageType `codec:"image_type"`
	PixelsAsFloat bool      `codec:"pixels_as_float"`
	Compress      bool      `codec:"compress"`
}

// ImageResponse is one rendered buffer. Uncompressed scene images arrive as
// interleaved BGR(A) bytes; float buffers fill ImageDataFloat instead.
type ImageResponse struct {
	ImageDataUint8    []byte      `codec:"image_data_uint8"`
	ImageDataFloat    []float32   `codec:"image_data_float"`
	CameraPosition    Vector3r    `codec:"camera_position"`
	CameraOrientation Quaternionr `codec:"camera_orientation"`
	CameraName        string      `codec:"camera_name"`
	TimeStamp         uint64      `codec:"time_stamp"`
	Message           string      `codec:"message"`
	PixelsAsFloat     bool        `codec:"pixels_as_float"`
	Compress          bool        `codec:"compress"`
	Width             int         `codec:"width"`
	Height            int         `codec:"height"`
	ImageType         ImageType   `codec:"image_type"`
}

// TimeOfDay is the argument set of simSetTimeOfDay.
type TimeOfDay struct {
	Enabled             bool
	StartDateTime       string
	IsDST               bool
	CelestialClockSpeed float64
	UpdateIntervalSecs  float64
	MoveSun             bool
}

// FixedHour returns a frozen sun at the given hour of the vernal equinox.
func FixedHour(hour int) TimeOfDay {
	return TimeOfDay{
		Enabled:             true,
		StartDateTime:       fmt.Sprintf("2020-03-21 %02d:00:00", hour),
		IsDST:               true,
		CelestialClockSpeed: 0,
		UpdateIntervalSecs:  60,
		MoveSun:             true,
	}
}

// Quaternion converts Tait-Bryan angles to a unit quaternion using the simulator's
// convention (yaw about Z, then pitch about Y, then roll about X).
func Quaternion(o core.Orientation) quat.Number {
	cy, sy := math.Cos(o.Yaw*0.5), math.Sin(o.Yaw*0.5)
	cr, sr := math.Cos(o.Roll*0.5), math.Sin(o.Roll*0.5)
	cp, sp := math.Cos(o.Pitch*0.5), math.Sin(o.Pitch*0.5)

	return quat.Number{
		Real: cy*cr*cp + sy*sr*sp,
		Imag: cy*sr*cp - sy*cr*sp,
		Jmag: cy*cr*sp + sy*sr*cp,
		Kmag: sy*cr*cp - cy*sr*sp,
	}
}

// ToWire converts a pose to its wire form.
func ToWire(p core.Pose) WirePose {
	q := Quaternion(p.Orientation)
	return WirePose{
		Position: Vector3r{
			X: float32(p.Position.X),
			Y: float32(p.Position.Y),
			Z: float32(p.Position.Z),
		},
		Orientation: Quaternionr{
			W: float32(q.Real),
			X: float32(q.Imag),
			Y: float32(q.Jmag),
			Z: float32(q.Kmag),
		},
	}
}
