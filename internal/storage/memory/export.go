package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"
)

// Manifest is the JSON document written on Close.
type Manifest struct {
	RunID       string           `json:"runId"`
	Environment string           `json:"environment"`
	StartTime   time.Time        `json:"startTime"`
	EndTime     time.Time        `json:"endTime"`
	SeqLen      int              `json:"seqLen"`
	ShortSeqLen int              `json:"shortSeqLen"`
	FrameSize   int              `json:"frameSize"`
	FPS         float64          `json:"fps"`
	Seed        uint64           `json:"seed"`
	Profile     scene.Profile    `json:"profile"`
	Settings    map[string]any   `json:"settings,omitempty"`
	Sequences   []SequenceRecord `json:"sequences"`
}

// SequenceRecord is one manifest entry. Pixel data is not exported, only shapes.
type SequenceRecord struct {
	Index      int         `json:"index"`
	TimeOfDay  string      `json:"timeOfDay"`
	Labels     core.Labels `json:"labels"`
	VideoShape [4]int      `json:"videoShape"`
	ShortShape [4]int      `json:"shortShape"`
	DepthShape [2]int      `json:"depthShape"`
}

func clipShape(c core.Clip) [4]int {
	t, ch, h, w := c.Shape()
	return [4]int{t, ch, h, w}
}

// exportJSON writes the manifest into the run directory.
func (b *Backend) exportJSON() error {
	fileName := b.cfg.FileName
	if fileName == "" {
		fileName = "labels.json"
	}
	if b.cfg.CompressOutput && !strings.HasSuffix(fileName, ".gz") {
		fileName += ".gz"
	}
	if !b.cfg.CompressOutput {
		fileName = strings.TrimSuffix(fileName, ".gz")
	}
	outputPath := filepath.Join(b.dir, fileName)

	export := b.buildExport()

	if b.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() Manifest {
	sequences := b.sequences.GetAndEmpty()
	export := Manifest{
		RunID:       b.run.ID,
		Environment: b.run.Environment,
		StartTime:   b.run.StartTime,
		EndTime:     time.Now(),
		SeqLen:      b.run.SeqLen,
		ShortSeqLen: b.run.ShortSeqLen,
		FrameSize:   b.run.FrameSize,
		FPS:         b.run.FPS,
		Seed:        b.run.Seed,
		Profile:     b.profile,
		Settings:    b.run.Settings,
		Sequences:   make([]SequenceRecord, 0, len(sequences)),
	}
	for _, seq := range sequences {
		export.Sequences = append(export.Sequences, SequenceRecord{
			Index:      seq.Index,
			TimeOfDay:  seq.TimeOfDay,
			Labels:     seq.Labels,
			VideoShape: clipShape(seq.Video),
			ShortShape: clipShape(seq.Short),
			DepthShape: [2]int{seq.Depth.Height, seq.Depth.Width},
		})
	}
	// Close may run again
	b.sequences.Push(sequences...)
	return export
}

func writeJSON(path string, data Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	return encodeGzipJSON(f, data)
}

// encodeGzipJSON writes data as one gzip member. The stream is only complete
// once the gzip writer is closed, so its error is returned.
func encodeGzipJSON(w io.Writer, data Manifest) error {
	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		_ = gzWriter.Close()
		return err
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
