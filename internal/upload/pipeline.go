// Package upload builds and submits multipart document creation requests
// with progress reporting. The underlying transport exposes no native
// progress events, so progress is synthesized: it climbs toward a high-water
// mark while the request is outstanding and jumps to 100 exactly once on
// success.
package upload

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edushare-client/internal/models"
	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

// Status is the lifecycle state of an upload task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInFlight  Status = "in-flight"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Creator is the submission dependency, satisfied by client.DocumentClient.
type Creator interface {
	Create(ctx context.Context, meta models.UploadMetadata, file models.FileSelection) (*models.Document, error)
}

// Config tunes the synthetic progress cadence.
type Config struct {
	TickInterval time.Duration
	TickStep     int
	HighWater    int
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = 300 * time.Millisecond
	}
	if c.TickStep <= 0 {
		c.TickStep = 10
	}
	if c.HighWater <= 0 || c.HighWater >= 100 {
		c.HighWater = 90
	}
	return c
}

// Pipeline submits upload tasks.
type Pipeline struct {
	creator Creator
	config  Config
	logger  *zap.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(creator Creator, config Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{creator: creator, config: config.withDefaults(), logger: logger}
}

// Task is a single upload in flight. It retains the full file selection so a
// failed task can be resubmitted without re-selecting files, even though each
// submission sends exactly one file.
type Task struct {
	mu        sync.Mutex
	meta      models.UploadMetadata
	selection []models.FileSelection
	progress  int
	status    Status
	doc       *models.Document
	err       error
	done      chan struct{}
}

// Submit starts an upload for the first file of the selection and returns
// immediately. The progress ticker is owned by the task and is released on
// every exit path.
func (p *Pipeline) Submit(ctx context.Context, meta models.UploadMetadata, selection []models.FileSelection) (*Task, error) {
	if len(selection) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select at least one file")
	}

	task := &Task{
		meta:      meta,
		selection: append([]models.FileSelection(nil), selection...),
		status:    StatusPending,
		done:      make(chan struct{}),
	}

	go p.run(ctx, task)
	return task, nil
}

func (p *Pipeline) run(ctx context.Context, task *Task) {
	task.mu.Lock()
	task.status = StatusInFlight
	task.mu.Unlock()

	stop := make(chan struct{})
	var tickerDone sync.WaitGroup
	tickerDone.Add(1)
	go func() {
		defer tickerDone.Done()
		ticker := time.NewTicker(p.config.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				task.advance(p.config.TickStep, p.config.HighWater)
			}
		}
	}()

	doc, err := p.creator.Create(ctx, task.meta, task.selection[0])

	// Stop the ticker before recording the outcome so progress can never
	// move again after reaching a terminal state.
	close(stop)
	tickerDone.Wait()

	task.mu.Lock()
	if err != nil {
		task.status = StatusFailed
		task.err = err
	} else {
		task.status = StatusSucceeded
		task.doc = doc
		task.progress = 100
	}
	task.mu.Unlock()
	close(task.done)

	if err != nil {
		p.logger.Warn("upload failed", zap.String("title", task.meta.Title), zap.Error(err))
	} else if doc != nil {
		p.logger.Info("upload succeeded",
			zap.String("document_id", doc.ID),
			zap.String("title", doc.Title),
		)
	}
}

func (t *Task) advance(step, highWater int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusInFlight {
		return
	}
	t.progress += step
	if t.progress > highWater {
		t.progress = highWater
	}
}

// Wait blocks until the task reaches a terminal state or the context ends.
func (t *Task) Wait(ctx context.Context) (*models.Document, error) {
	select {
	case <-ctx.Done():
		return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, "upload interrupted")
	case <-t.done:
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc, t.err
}

// Progress returns the current value in [0,100]. It is monotonically
// non-decreasing for the lifetime of the task; on failure it freezes at its
// last value.
func (t *Task) Progress() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// Status returns the task's lifecycle state.
func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Document returns the created document after success, nil otherwise.
func (t *Task) Document() *models.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc
}

// Err returns the terminal error, nil while running or after success.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Selection returns the files the task was built from, preserved for
// resubmission after a failure.
func (t *Task) Selection() []models.FileSelection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.FileSelection(nil), t.selection...)
}

// Metadata returns the form fields the task was built from.
func (t *Task) Metadata() models.UploadMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.meta
}
