package listctl

import (
	"context"
	"maps"

	"github.com/simp-lee/casedesk/internal/schema"
)

// Row is one displayed record rendered as edit text.
type Row struct {
	ID     string
	Values schema.Draft
}

// Info summarises the query and the displayed page. Page is the requested
// page; DisplayedPage is the page of the held result and differs from Page
// while a fetch is pending or after one failed.
type Info struct {
	Page          int
	DisplayedPage int
	Limit         int
	Total         int64
	TotalPages    int
	Search        string
	Filter        map[string]string
	Loaded        bool
}

// Session is the record-type independent view of a Controller, for front
// ends that drive many record types through one code path.
type Session interface {
	Schema() *schema.Schema
	SetSearch(ctx context.Context, term string) error
	SetFilter(ctx context.Context, key, value string) error
	GotoPage(ctx context.Context, n int) error
	Refetch(ctx context.Context) error
	Info() Info
	Rows() ([]Row, error)

	OpenCreate() error
	OpenEdit(id string) error
	SetField(name, value string) error
	Submit(ctx context.Context) error
	Cancel() error
	ModalError() error

	RequestRemove(id string) error
	ConfirmRemove(ctx context.Context) error
	CancelRemove()
}

// Info returns the query and page counters.
func (c *Controller[T]) Info() Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := Info{
		Page:   c.query.Page,
		Limit:  c.query.Limit,
		Search: c.query.Search,
		Filter: maps.Clone(c.query.Filter),
	}
	if c.page != nil {
		info.Loaded = true
		info.DisplayedPage = c.page.Page
		info.Total = c.page.Total
		info.TotalPages = c.page.TotalPages
	}
	return info
}

// Rows renders the displayed records through the schema, dates truncated.
func (c *Controller[T]) Rows() ([]Row, error) {
	s := c.Snapshot()
	if s.Page == nil {
		return nil, nil
	}
	rows := make([]Row, 0, len(s.Page.Items))
	for _, rec := range s.Page.Items {
		d, err := c.schema.DraftOf(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{ID: rec.RecordID(), Values: d})
	}
	return rows, nil
}

// ModalError returns the error attached to the open modal, if any.
func (c *Controller[T]) ModalError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal.Err
}
