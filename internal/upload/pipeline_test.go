package upload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edushare-client/internal/models"
	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

type stubCreator struct {
	gate chan struct{}
	doc  *models.Document
	err  error

	gotMeta models.UploadMetadata
	gotFile models.FileSelection
}

func (s *stubCreator) Create(ctx context.Context, meta models.UploadMetadata, file models.FileSelection) (*models.Document, error) {
	s.gotMeta = meta
	s.gotFile = file
	if s.gate != nil {
		<-s.gate
	}
	return s.doc, s.err
}

func fastConfig() Config {
	return Config{TickInterval: time.Millisecond, TickStep: 10, HighWater: 90}
}

func TestSubmitRejectsEmptySelection(t *testing.T) {
	pipeline := NewPipeline(&stubCreator{}, fastConfig(), nil)

	_, err := pipeline.Submit(context.Background(), models.UploadMetadata{Title: "x"}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestProgressClimbsMonotonicallyAndCaps(t *testing.T) {
	creator := &stubCreator{gate: make(chan struct{}), doc: &models.Document{ID: "d1"}}
	pipeline := NewPipeline(creator, fastConfig(), nil)

	task, err := pipeline.Submit(context.Background(), models.UploadMetadata{Title: "TD"}, []models.FileSelection{{Name: "a.pdf", Data: []byte("a")}})
	require.NoError(t, err)

	last := 0
	deadline := time.After(time.Second)
	for task.Progress() < 90 {
		p := task.Progress()
		require.GreaterOrEqual(t, p, last)
		last = p
		select {
		case <-deadline:
			t.Fatal("progress never reached the high-water mark")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// While the request is outstanding, progress stays below 100.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 90, task.Progress())
	assert.Equal(t, StatusInFlight, task.Status())

	close(creator.gate)
	doc, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, 100, task.Progress())
	assert.Equal(t, StatusSucceeded, task.Status())

	// Terminal state is stable: the ticker is stopped and nothing moves.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 100, task.Progress())
}

func TestFailureFreezesProgressAndKeepsSelection(t *testing.T) {
	bang := errors.New("boom")
	creator := &stubCreator{gate: make(chan struct{}), err: bang}
	pipeline := NewPipeline(creator, fastConfig(), nil)

	selection := []models.FileSelection{
		{Name: "a.pdf", Data: []byte("a")},
		{Name: "b.pdf", Data: []byte("b")},
	}
	task, err := pipeline.Submit(context.Background(), models.UploadMetadata{Title: "TD"}, selection)
	require.NoError(t, err)

	// Let some synthetic progress accumulate, then fail the request.
	time.Sleep(5 * time.Millisecond)
	close(creator.gate)

	_, err = task.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, bang)
	assert.Equal(t, StatusFailed, task.Status())

	frozen := task.Progress()
	assert.Less(t, frozen, 100)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frozen, task.Progress())

	// The full selection survives for resubmission.
	assert.Equal(t, selection, task.Selection())
	assert.Equal(t, "TD", task.Metadata().Title)

	// Resubmission with the preserved selection works.
	creator2 := &stubCreator{doc: &models.Document{ID: "d2"}}
	pipeline2 := NewPipeline(creator2, fastConfig(), nil)
	retry, err := pipeline2.Submit(context.Background(), task.Metadata(), task.Selection())
	require.NoError(t, err)
	doc, err := retry.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "d2", doc.ID)
}

func TestExactlyOneFilePerSubmission(t *testing.T) {
	creator := &stubCreator{doc: &models.Document{ID: "d1"}}
	pipeline := NewPipeline(creator, fastConfig(), nil)

	selection := []models.FileSelection{
		{Name: "first.pdf", Data: []byte("1")},
		{Name: "second.pdf", Data: []byte("2")},
	}
	task, err := pipeline.Submit(context.Background(), models.UploadMetadata{Title: "TD"}, selection)
	require.NoError(t, err)
	_, err = task.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "first.pdf", creator.gotFile.Name)
}

func TestWaitHonoursContext(t *testing.T) {
	creator := &stubCreator{gate: make(chan struct{})}
	pipeline := NewPipeline(creator, fastConfig(), nil)

	task, err := pipeline.Submit(context.Background(), models.UploadMetadata{Title: "TD"}, []models.FileSelection{{Name: "a", Data: []byte("a")}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err = task.Wait(ctx)
	require.Error(t, err)

	close(creator.gate)
	_, err = task.Wait(context.Background())
	require.NoError(t, err)
}
