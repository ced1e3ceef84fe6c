package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema.
// Row order in labels, videos, short_videos and depth matches: the n-th row of each
// belongs to the same sequence, and SequenceIndex makes that explicit.
var DatabaseModels = []interface{}{
	&Run{},
	&Label{},
	&Video{},
	&ShortVideo{},
	&Depth{},
	&SequenceMeta{},
}

////////////////////////
// RUN MODELS
////////////////////////

// Run is one invocation of the generator against one environment.
type Run struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	Environment string         `json:"environment" gorm:"size:64;index:idx_run_environment"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     *time.Time     `json:"endTime"`
	OutputDir   string         `json:"outputDir" gorm:"size:512"`
	SeqLen      int            `json:"seqLen"`
	ShortSeqLen int            `json:"shortSeqLen"`
	FrameSize   int            `json:"frameSize"`
	FPS         float64        `json:"fps"`
	Trials      int            `json:"trials"`
	Seed        int64          `json:"seed"`
	Sequences   int            `json:"sequences"`
	Profile     datatypes.JSON `json:"profile"`
	Settings    datatypes.JSON `json:"settings"`
}

func (*Run) TableName() string {
	return "runs"
}

////////////////////////
// SEQUENCE MODELS
////////////////////////

// Label is the egomotion label row of a sequence.
type Label struct {
	ID            uint    `json:"id" gorm:"primarykey;autoIncrement"`
	RunID         string  `json:"runId" gorm:"size:36;index:idx_label_run_seq,priority:1"`
	SequenceIndex int     `json:"sequenceIndex" gorm:"index:idx_label_run_seq,priority:2"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Z             float64 `json:"z"`
	Yaw           float64 `json:"yaw"`
	Pitch         float64 `json:"pitch"`
	Speed         float64 `json:"speed"`
	HeadingYaw    float64 `json:"headingYaw"`
	HeadingPitch  float64 `json:"headingPitch"`
	RotationYaw   float64 `json:"rotationYaw"`
	RotationPitch float64 `json:"rotationPitch"`
}

func (*Label) TableName() string {
	return "labels"
}

// ClipBlock is a uint8 array of shape (Frames, Channels, Height, Width) in C order.
type ClipBlock struct {
	Frames   int    `json:"frames"`
	Channels int    `json:"channels"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
	Data     []byte `json:"-"`
}

// Video holds the full clip of a sequence.
type Video struct {
	ID            uint      `json:"id" gorm:"primarykey;autoIncrement"`
	RunID         string    `json:"runId" gorm:"size:36;index:idx_video_run_seq,priority:1"`
	SequenceIndex int       `json:"sequenceIndex" gorm:"index:idx_video_run_seq,priority:2"`
	Clip          ClipBlock `json:"clip" gorm:"embedded"`
}

func (*Video) TableName() string {
	return "videos"
}

// ShortVideo holds the centered short clip of a sequence.
type ShortVideo struct {
	ID            uint      `json:"id" gorm:"primarykey;autoIncrement"`
	RunID         string    `json:"runId" gorm:"size:36;index:idx_short_video_run_seq,priority:1"`
	SequenceIndex int       `json:"sequenceIndex" gorm:"index:idx_short_video_run_seq,priority:2"`
	Clip          ClipBlock `json:"clip" gorm:"embedded"`
}

func (*ShortVideo) TableName() string {
	return "short_videos"
}

// Depth holds the midpoint depth map of a sequence as little-endian float64 values.
type Depth struct {
	ID            uint   `json:"id" gorm:"primarykey;autoIncrement"`
	RunID         string `json:"runId" gorm:"size:36;index:idx_depth_run_seq,priority:1"`
	SequenceIndex int    `json:"sequenceIndex" gorm:"index:idx_depth_run_seq,priority:2"`
	Height        int    `json:"height"`
	Width         int    `json:"width"`
	Data          []byte `json:"-"`
}

func (*Depth) TableName() string {
	return "depth"
}

// SequenceMeta holds everything about a sequence that is not a training target.
type SequenceMeta struct {
	ID            uint    `json:"id" gorm:"primarykey;autoIncrement"`
	RunID         string  `json:"runId" gorm:"size:36;index:idx_meta_run_seq,priority:1"`
	SequenceIndex int     `json:"sequenceIndex" gorm:"index:idx_meta_run_seq,priority:2"`
	TimeOfDay     string  `json:"timeOfDay" gorm:"size:32"`
	PathWKT       string  `json:"pathWkt"`
	PathLength    float64 `json:"pathLength"`
	Lon           float64 `json:"lon"`
	Lat           float64 `json:"lat"`
	Altitude      float64 `json:"altitude"`
}

func (*SequenceMeta) TableName() string {
	return "sequence_meta"
}

// SequenceRows groups the rows written for one sequence.
type SequenceRows struct {
	Label      Label
	Video      Video
	ShortVideo ShortVideo
	Depth      Depth
	Meta       SequenceMeta
}
