package client

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edushare-client/internal/models"
	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

type stubLister struct {
	mu      sync.Mutex
	started chan models.DocumentFilter
	release map[string]chan struct{}
	corpus  func(filter models.DocumentFilter) []models.Document
}

func (s *stubLister) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	if s.started != nil {
		s.started <- filter
	}
	s.mu.Lock()
	gate := s.release[filter.Search]
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return s.corpus(filter), nil
}

func corpusOf(n int, tag string) []models.Document {
	docs := make([]models.Document, n)
	for i := range docs {
		docs[i] = models.Document{ID: fmt.Sprintf("%s-%d", tag, i), Title: tag}
	}
	return docs
}

func TestPagerTotalPages(t *testing.T) {
	lister := &stubLister{corpus: func(models.DocumentFilter) []models.Document { return corpusOf(10, "doc") }}
	pager := NewPager(lister, 4)

	require.NoError(t, pager.SetFilter(context.Background(), models.DocumentFilter{}))
	assert.Equal(t, 3, pager.TotalPages())
	assert.Len(t, pager.Documents(), 10)

	assert.Len(t, pager.Window(), 4)
	pager.SetPage(3)
	assert.Len(t, pager.Window(), 2)
}

func TestPagerPageBeyondEndIsEmptyNotError(t *testing.T) {
	lister := &stubLister{corpus: func(models.DocumentFilter) []models.Document { return corpusOf(10, "doc") }}
	pager := NewPager(lister, 4)
	require.NoError(t, pager.SetFilter(context.Background(), models.DocumentFilter{}))

	pager.SetPage(7)
	assert.Empty(t, pager.Window())
	assert.Equal(t, 7, pager.Page())
}

func TestPagerFilterChangeResetsPage(t *testing.T) {
	lister := &stubLister{corpus: func(models.DocumentFilter) []models.Document { return corpusOf(10, "doc") }}
	pager := NewPager(lister, 4)

	require.NoError(t, pager.SetFilter(context.Background(), models.DocumentFilter{}))
	pager.SetPage(3)
	require.Equal(t, 3, pager.Page())

	require.NoError(t, pager.SetFilter(context.Background(), models.DocumentFilter{Type: "TD"}))
	assert.Equal(t, 1, pager.Page())
}

func TestPagerSetPageClampsLowerBound(t *testing.T) {
	pager := NewPager(&stubLister{corpus: func(models.DocumentFilter) []models.Document { return nil }}, 4)
	pager.SetPage(0)
	assert.Equal(t, 1, pager.Page())
	pager.SetPage(-3)
	assert.Equal(t, 1, pager.Page())
}

func TestPagerDiscardsSupersededResponse(t *testing.T) {
	firstGate := make(chan struct{})
	lister := &stubLister{
		started: make(chan models.DocumentFilter, 2),
		release: map[string]chan struct{}{"first": firstGate},
		corpus: func(filter models.DocumentFilter) []models.Document {
			return corpusOf(5, filter.Search)
		},
	}
	pager := NewPager(lister, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	firstErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		firstErr <- pager.SetFilter(context.Background(), models.DocumentFilter{Search: "first"})
	}()

	// Wait until the first request is in flight, then supersede it.
	<-lister.started
	require.NoError(t, pager.SetFilter(context.Background(), models.DocumentFilter{Search: "second"}))
	<-lister.started

	// Release the stale response; it must be discarded.
	close(firstGate)
	wg.Wait()

	err := <-firstErr
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSuperseded))

	docs := pager.Documents()
	require.NotEmpty(t, docs)
	for _, doc := range docs {
		assert.Equal(t, "second", doc.Title)
	}
}

func TestPagerRefreshKeepsPage(t *testing.T) {
	lister := &stubLister{corpus: func(models.DocumentFilter) []models.Document { return corpusOf(10, "doc") }}
	pager := NewPager(lister, 4)
	require.NoError(t, pager.SetFilter(context.Background(), models.DocumentFilter{}))
	pager.SetPage(2)

	require.NoError(t, pager.Refresh(context.Background()))
	assert.Equal(t, 2, pager.Page())
}

func TestPagerPagination(t *testing.T) {
	lister := &stubLister{corpus: func(models.DocumentFilter) []models.Document { return corpusOf(9, "doc") }}
	pager := NewPager(lister, 4)
	require.NoError(t, pager.SetFilter(context.Background(), models.DocumentFilter{}))

	meta := pager.Pagination()
	assert.Equal(t, models.Pagination{Page: 1, PageSize: 4, TotalCount: 9}, meta)
	assert.Equal(t, 3, pager.TotalPages())

	// The stub answers instantly; nothing should still be in flight.
	select {
	case <-time.After(10 * time.Millisecond):
	case f := <-lister.started:
		t.Fatalf("unexpected in-flight request: %+v", f)
	}
}
