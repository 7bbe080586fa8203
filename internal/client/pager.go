package client

import (
	"context"
	"sync"

	"github.com/noah-isme/edushare-client/internal/models"
	appErrors "github.com/noah-isme/edushare-client/pkg/errors"
)

// DefaultPageSize matches the portal's list views.
const DefaultPageSize = 4

// Lister is the listing dependency of Pager, satisfied by DocumentClient.
type Lister interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
}

// Pager maintains a filtered document sequence and derives page windows over
// it. Each filter change issues a new request under a monotonically
// increasing sequence number; a response that is no longer the most recent
// issued is discarded instead of overwriting newer state.
type Pager struct {
	lister   Lister
	pageSize int

	mu     sync.Mutex
	seq    uint64
	filter models.DocumentFilter
	page   int
	docs   []models.Document
}

// NewPager constructs a Pager with the given page size.
func NewPager(lister Lister, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{lister: lister, pageSize: pageSize, page: 1}
}

// SetFilter replaces the filter criteria, resets the active page to 1 and
// reloads. When a newer SetFilter or Refresh supersedes this call while its
// request is outstanding, the stale response is dropped and SUPERSEDED is
// returned.
func (p *Pager) SetFilter(ctx context.Context, filter models.DocumentFilter) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.filter = filter
	p.page = 1
	p.mu.Unlock()

	return p.load(ctx, seq, filter)
}

// Refresh re-issues the listing for the current filter, keeping the active
// page. Subject to the same supersession rule as SetFilter.
func (p *Pager) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	filter := p.filter
	p.mu.Unlock()

	return p.load(ctx, seq, filter)
}

func (p *Pager) load(ctx context.Context, seq uint64, filter models.DocumentFilter) error {
	docs, err := p.lister.List(ctx, filter)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		return appErrors.Clone(appErrors.ErrSuperseded, "")
	}
	if err != nil {
		return err
	}
	p.docs = docs
	return nil
}

// SetPage selects the active page. Values below 1 clamp to 1; values beyond
// TotalPages are kept and simply yield an empty window.
func (p *Pager) SetPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page < 1 {
		page = 1
	}
	p.page = page
}

// Page returns the active page index.
func (p *Pager) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// TotalPages returns ceil(N / pageSize) for the current sequence.
func (p *Pager) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return (len(p.docs) + p.pageSize - 1) / p.pageSize
}

// Documents returns a copy of the full filtered sequence.
func (p *Pager) Documents() []models.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Document, len(p.docs))
	copy(out, p.docs)
	return out
}

// Window returns the documents of the active page. Pages past the end are
// empty, never an error.
func (p *Pager) Window() []models.Document {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := (p.page - 1) * p.pageSize
	if start >= len(p.docs) {
		return nil
	}
	end := start + p.pageSize
	if end > len(p.docs) {
		end = len(p.docs)
	}
	out := make([]models.Document, end-start)
	copy(out, p.docs[start:end])
	return out
}

// Pagination returns the metadata for the current window.
func (p *Pager) Pagination() models.Pagination {
	p.mu.Lock()
	defer p.mu.Unlock()
	return models.Pagination{Page: p.page, PageSize: p.pageSize, TotalCount: len(p.docs)}
}
