// Package gormstorage implements the storage.Backend interface on top of GORM
// with an internal queue and a background DB writer goroutine.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/flythrough/internal/database"
	"github.com/OCAP2/flythrough/internal/geo"
	"github.com/OCAP2/flythrough/internal/logging"
	"github.com/OCAP2/flythrough/internal/model"
	"github.com/OCAP2/flythrough/internal/model/convert"
	"github.com/OCAP2/flythrough/internal/queue"
	"github.com/OCAP2/flythrough/internal/scene"
	"github.com/OCAP2/flythrough/pkg/core"

	"gorm.io/gorm"
)

const (
	defaultBatchSize     = 16
	defaultFlushInterval = time.Second
)

var (
	// ErrNoDatabase is returned by Init when no connection was injected.
	ErrNoDatabase = errors.New("no database connection")
	// ErrRunNotStarted is returned by AppendSequence before StartRun.
	ErrRunNotStarted = errors.New("run not started")
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	Manager    *database.Manager
	LogManager *logging.SlogManager
	Origin     *geo.Origin

	// BatchSize is the number of sequences written per transaction.
	BatchSize int
	// FlushInterval is how often the writer goroutine drains the queue.
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps    Dependencies
	queue   *queue.Queue[model.SequenceRows]
	runID   atomic.Value
	written atomic.Int64

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.BatchSize <= 0 {
		deps.BatchSize = defaultBatchSize
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{
		deps:  deps,
		queue: queue.New[model.SequenceRows](),
	}
}

func (b *Backend) db() *gorm.DB {
	if b.deps.Manager == nil {
		return nil
	}
	return b.deps.Manager.DB
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.db() == nil {
		return ErrNoDatabase
	}
	if err := b.deps.Manager.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writer()
	return nil
}

// StartRun inserts the run row. Sequences appended afterwards reference it.
func (b *Backend) StartRun(run *core.Run, profile scene.Profile) error {
	db := b.db()
	if db == nil {
		return ErrNoDatabase
	}
	row, err := convert.CoreToRun(*run, profile)
	if err != nil {
		return err
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	b.runID.Store(row.ID)
	b.deps.LogManager.Logger().Info("Run registered", "runId", row.ID, "environment", row.Environment)
	return nil
}

func (b *Backend) currentRun() string {
	id, _ := b.runID.Load().(string)
	return id
}

// AppendSequence converts and queues a sequence for the writer goroutine.
func (b *Backend) AppendSequence(seq *core.Sequence) error {
	runID := b.currentRun()
	if runID == "" {
		return ErrRunNotStarted
	}
	rows, err := convert.SequenceToRows(runID, *seq, b.deps.Origin)
	if err != nil {
		return err
	}
	b.queue.Push(rows)
	return nil
}

// Pending returns the number of sequences not yet written.
func (b *Backend) Pending() int {
	return b.queue.Len()
}

// Written returns the number of sequences committed to the database.
func (b *Backend) Written() int {
	return int(b.written.Load())
}

// Flush writes every queued sequence, one transaction per batch.
// A failed batch is put back at the front of the queue.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	db := b.db()
	if db == nil {
		return ErrNoDatabase
	}
	for !b.queue.Empty() {
		batch := b.queue.Take(b.deps.BatchSize)
		if err := writeBatch(db, batch); err != nil {
			b.queue.Requeue(batch...)
			return err
		}
		b.written.Add(int64(len(batch)))
	}
	return nil
}

// Close stops the writer goroutine, drains the queue and stamps the run's end.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil

	err := b.Flush()
	if runID := b.currentRun(); runID != "" && b.db() != nil {
		now := time.Now()
		updateErr := b.db().Model(&model.Run{}).Where("id = ?", runID).Updates(map[string]any{
			"end_time":  now,
			"sequences": b.Written(),
		}).Error
		if updateErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to finish run: %w", updateErr))
		}
	}
	if pending := b.Pending(); pending > 0 {
		b.deps.LogManager.Logger().Error("Sequences left unwritten", "pending", pending)
	}
	return err
}

// writer periodically drains the queue into the DB.
func (b *Backend) writer() {
	defer close(b.done)
	log := b.deps.LogManager.Logger()

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			before := b.Written()
			if err := b.Flush(); err != nil {
				log.Error("Error writing sequences", "error", err, "pending", b.Pending())
				continue
			}
			if n := b.Written() - before; n > 0 {
				log.Debug("Wrote sequences", "count", n, "duration", time.Since(start))
			}
		}
	}
}

// writeBatch writes the rows of every table for a batch in one transaction.
func writeBatch(db *gorm.DB, batch []model.SequenceRows) error {
	if len(batch) == 0 {
		return nil
	}
	labels := make([]model.Label, len(batch))
	videos := make([]model.Video, len(batch))
	shorts := make([]model.ShortVideo, len(batch))
	depths := make([]model.Depth, len(batch))
	metas := make([]model.SequenceMeta, len(batch))
	for i, rows := range batch {
		labels[i] = rows.Label
		videos[i] = rows.Video
		shorts[i] = rows.ShortVideo
		depths[i] = rows.Depth
		metas[i] = rows.Meta
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	if err := createAll(tx, labels, "labels"); err != nil {
		return err
	}
	if err := createAll(tx, videos, "videos"); err != nil {
		return err
	}
	if err := createAll(tx, shorts, "short videos"); err != nil {
		return err
	}
	if err := createAll(tx, depths, "depth maps"); err != nil {
		return err
	}
	if err := createAll(tx, metas, "sequence metadata"); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit sequences: %w", err)
	}
	return nil
}

// createAll inserts items inside tx, rolling it back on failure.
func createAll[T any](tx *gorm.DB, items []T, name string) error {
	if err := tx.Create(&items).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("error creating %s: %w", name, err)
	}
	return nil
}
