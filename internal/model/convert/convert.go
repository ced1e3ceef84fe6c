// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/OCAP2/flythrough/internal/geo"
	"github.com/OCAP2/flythrough/internal/model"
	"github.com/OCAP2/flythrough/pkg/core"
	"gorm.io/datatypes"
)

// toJSON marshals v for a JSON column. A nil value becomes an empty object.
func toJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON("{}"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// CoreToRun converts a core.Run to a GORM model.Run. profile is stored verbatim as JSON.
func CoreToRun(r core.Run, profile any) (model.Run, error) {
	profileJSON, err := toJSON(profile)
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to encode profile: %w", err)
	}
	var settings any
	if r.Settings != nil {
		settings = r.Settings
	}
	settingsJSON, err := toJSON(settings)
	if err != nil {
		return model.Run{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	return model.Run{
		ID:          r.ID,
		Environment: r.Environment,
		StartTime:   r.StartTime,
		OutputDir:   r.OutputDir,
		SeqLen:      r.SeqLen,
		ShortSeqLen: r.ShortSeqLen,
		FrameSize:   r.FrameSize,
		FPS:         r.FPS,
		Trials:      r.Trials,
		Seed:        int64(r.Seed),
		Profile:     profileJSON,
		Settings:    settingsJSON,
	}, nil
}

// CoreToLabel converts core.Labels to a GORM model.Label.
func CoreToLabel(runID string, index int, l core.Labels) model.Label {
	return model.Label{
		RunID:         runID,
		SequenceIndex: index,
		X:             l.X,
		Y:             l.Y,
		Z:             l.Z,
		Yaw:           l.Yaw,
		Pitch:         l.Pitch,
		Speed:         l.Speed,
		HeadingYaw:    l.HeadingYaw,
		HeadingPitch:  l.HeadingPitch,
		RotationYaw:   l.RotationYaw,
		RotationPitch: l.RotationPitch,
	}
}

// LabelToCore converts a GORM model.Label back to core.Labels.
func LabelToCore(l model.Label) core.Labels {
	return core.Labels{
		X:             l.X,
		Y:             l.Y,
		Z:             l.Z,
		Yaw:           l.Yaw,
		Pitch:         l.Pitch,
		Speed:         l.Speed,
		HeadingYaw:    l.HeadingYaw,
		HeadingPitch:  l.HeadingPitch,
		RotationYaw:   l.RotationYaw,
		RotationPitch: l.RotationPitch,
	}
}

// ClipToBlock flattens a clip into a (T, 3, H, W) uint8 block.
func ClipToBlock(c core.Clip) model.ClipBlock {
	frames, channels, h, w := c.Shape()
	return model.ClipBlock{Frames: frames, Channels: channels, Height: h, Width: w, Data: c.Bytes()}
}

// BlockToClip splits a uint8 block back into frames.
func BlockToClip(b model.ClipBlock) (core.Clip, error) {
	size := b.Channels * b.Height * b.Width
	if b.Channels != 3 || len(b.Data) != b.Frames*size {
		return nil, fmt.Errorf("clip block %dx%dx%dx%d does not match %d bytes",
			b.Frames, b.Channels, b.Height, b.Width, len(b.Data))
	}
	clip := make(core.Clip, b.Frames)
	for i := range clip {
		pix := make([]uint8, size)
		copy(pix, b.Data[i*size:(i+1)*size])
		clip[i] = core.Frame{Width: b.Width, Height: b.Height, Pix: pix}
	}
	return clip, nil
}

// DepthToBlob encodes depth values as little-endian float64.
func DepthToBlob(d core.DepthMap) []byte {
	buf := make([]byte, 8*len(d.Data))
	for i, v := range d.Data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

// BlobToDepth decodes a depth row.
func BlobToDepth(d model.Depth) (core.DepthMap, error) {
	n := d.Height * d.Width
	if len(d.Data) != 8*n {
		return core.DepthMap{}, fmt.Errorf("depth blob of %d bytes does not match %dx%d", len(d.Data), d.Width, d.Height)
	}
	out := core.DepthMap{Width: d.Width, Height: d.Height, Data: make([]float64, n)}
	for i := range out.Data {
		out.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(d.Data[8*i:]))
	}
	return out, nil
}

// SequenceToRows converts a recorded sequence into the rows of every table.
// origin may be nil, in which case the geotag columns stay zero.
func SequenceToRows(runID string, seq core.Sequence, origin *geo.Origin) (model.SequenceRows, error) {
	rows := model.SequenceRows{
		Label: CoreToLabel(runID, seq.Index, seq.Labels),
		Video: model.Video{
			RunID:         runID,
			SequenceIndex: seq.Index,
			Clip:          ClipToBlock(seq.Video),
		},
		ShortVideo: model.ShortVideo{
			RunID:         runID,
			SequenceIndex: seq.Index,
			Clip:          ClipToBlock(seq.Short),
		},
		Depth: model.Depth{
			RunID:         runID,
			SequenceIndex: seq.Index,
			Height:        seq.Depth.Height,
			Width:         seq.Depth.Width,
			Data:          DepthToBlob(seq.Depth),
		},
		Meta: model.SequenceMeta{
			RunID:         runID,
			SequenceIndex: seq.Index,
			TimeOfDay:     seq.TimeOfDay,
		},
	}

	if len(seq.Path) >= 2 {
		ls, err := geo.Path(seq.Path)
		if err != nil {
			return rows, err
		}
		rows.Meta.PathWKT = ls.AsText()
		rows.Meta.PathLength = ls.Length()
	}

	if origin != nil {
		start := core.Position3D{X: seq.Labels.X, Y: seq.Labels.Y, Z: seq.Labels.Z}
		point, err := geo.Geotag(*origin, start)
		if err != nil {
			return rows, fmt.Errorf("failed to geotag sequence %d: %w", seq.Index, err)
		}
		coords, _ := point.Coordinates()
		rows.Meta.Lon = coords.X
		rows.Meta.Lat = coords.Y
		rows.Meta.Altitude = coords.Z
	}
	return rows, nil
}
