package listctl

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/schema"
)

const defaultLimit = 20

var (
	// ErrPageOutOfRange is returned by GotoPage for a page outside
	// [1, TotalPages]. Nothing changes and no request is sent.
	ErrPageOutOfRange = errors.New("listctl: page out of range")
	// ErrSuperseded is returned by Refetch when a newer request was issued
	// before the response arrived; the response was discarded.
	ErrSuperseded = errors.New("listctl: response superseded by a newer request")
	// ErrModalState is returned when a modal operation does not fit the
	// current modal phase or mode.
	ErrModalState = errors.New("listctl: operation not allowed in the current modal state")
	// ErrNotDisplayed is returned when an id is not on the displayed page.
	ErrNotDisplayed = errors.New("listctl: record is not on the displayed page")
	// ErrNoPendingRemoval is returned by ConfirmRemove without a prior
	// RequestRemove.
	ErrNoPendingRemoval = errors.New("listctl: no removal awaiting confirmation")
)

// Phase is the modal lifecycle: Closed -> Open -> Submitting -> Closed on
// success or back to Open with an error.
type Phase int

const (
	Closed Phase = iota
	Open
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Mode says what a modal submits.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Modal is a snapshot of the create/edit modal.
type Modal struct {
	Phase Phase
	Mode  Mode
	ID    string // record being edited
	Draft schema.Draft
	Err   error // last submit failure
}

// State is an immutable snapshot of a controller.
type State[T domain.Record] struct {
	Query          domain.PageRequest
	Page           *domain.PageResult[T] // nil until the first successful fetch
	Modal          Modal
	PendingRemoval string
	Loading        bool
}

type options struct {
	limit    int
	sort     string
	logger   *slog.Logger
	notifier Notifier
	onChange func()
}

// Option configures a Controller.
type Option func(*options)

// WithLimit sets the page size. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithSort sets the sort expression sent with every list request
// ("field:asc" or "field:desc").
func WithSort(sort string) Option {
	return func(o *options) { o.sort = sort }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNotifier sets where user-visible notifications go. The default logs
// them.
func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithOnChange registers fn to run after every state change, without the
// controller lock held.
func WithOnChange(fn func()) Option {
	return func(o *options) { o.onChange = fn }
}

// Controller keeps the displayed page of one record type consistent with
// its query and reconciles after mutations. The server is the source of
// truth: mutations never patch the page locally, they refetch.
//
// All methods are safe for concurrent use. The lock is never held across an
// API call.
type Controller[T domain.Record] struct {
	api    API[T]
	schema *schema.Schema
	log    *slog.Logger
	notify Notifier
	change func()

	mu      sync.Mutex
	query   domain.PageRequest
	page    *domain.PageResult[T]
	seq     uint64 // id of the latest issued list request
	loading bool
	modal   Modal
	pending string
}

// New creates a controller for api with the field schema s. No request is
// sent until the first Refetch.
func New[T domain.Record](api API[T], s *schema.Schema, opts ...Option) *Controller[T] {
	o := options{limit: defaultLimit, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = logNotifier{log: o.logger}
	}

	return &Controller[T]{
		api:    api,
		schema: s,
		log:    o.logger.With(slog.String("records", s.Name())),
		notify: o.notifier,
		change: o.onChange,
		query: domain.PageRequest{
			Page:   1,
			Limit:  o.limit,
			Sort:   o.sort,
			Filter: map[string]string{},
		},
	}
}

// Schema returns the field schema.
func (c *Controller[T]) Schema() *schema.Schema {
	return c.schema
}

// SetSearch replaces the search term, resets to page 1 and refetches.
func (c *Controller[T]) SetSearch(ctx context.Context, term string) error {
	c.mu.Lock()
	c.query.Search = term
	c.query.Page = 1
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// SetFilter sets one filter, resets to page 1 and refetches. An empty value
// or "all" (any case) removes the filter. Keys that are not filterable and
// enum values outside the field's options are rejected without a request.
func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) error {
	f, ok := c.schema.Field(key)
	if !ok || !f.Filterable {
		return domain.NewValidationError("unknown filter", map[string]string{key: "not filterable"})
	}

	value = strings.TrimSpace(value)
	unset := value == "" || strings.EqualFold(value, "all")
	if !unset && f.Kind == schema.Enum && !slices.Contains(f.Options, value) {
		return domain.NewValidationError("invalid filter value",
			map[string]string{key: "oneof=" + strings.Join(f.Options, " ")})
	}

	c.mu.Lock()
	if unset {
		delete(c.query.Filter, key)
	} else {
		c.query.Filter[key] = value
	}
	c.query.Page = 1
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// GotoPage moves to page n and refetches. n must lie in [1, TotalPages] of
// the displayed page; otherwise it returns ErrPageOutOfRange and changes
// nothing.
func (c *Controller[T]) GotoPage(ctx context.Context, n int) error {
	c.mu.Lock()
	total := 0
	if c.page != nil {
		total = c.page.TotalPages
	}
	if n < 1 || n > total {
		c.mu.Unlock()
		return ErrPageOutOfRange
	}
	c.query.Page = n
	c.mu.Unlock()
	return c.Refetch(ctx)
}

// Refetch lists the current query. Success replaces the displayed page;
// failure notifies and keeps the previous page. Only the latest request may
// update the page: an older response, successful or not, is dropped and
// ErrSuperseded returned.
func (c *Controller[T]) Refetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	req := cloneQuery(c.query)
	c.loading = true
	c.mu.Unlock()
	c.changed()

	page, err := c.api.List(ctx, req)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.DebugContext(ctx, "discarding superseded list response", slog.Uint64("seq", seq))
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		c.log.WarnContext(ctx, "list records failed", slog.Any("error", err))
		c.fail("could not load records", err)
		c.changed()
		return err
	}
	c.page = page
	c.mu.Unlock()
	c.changed()
	return nil
}

// OpenCreate opens the modal in create mode with the schema defaults.
func (c *Controller[T]) OpenCreate() error {
	c.mu.Lock()
	if c.modal.Phase != Closed {
		c.mu.Unlock()
		return ErrModalState
	}
	c.modal = Modal{Phase: Open, Mode: ModeCreate, Draft: c.schema.Defaults()}
	c.mu.Unlock()
	c.changed()
	return nil
}

// OpenEdit opens the modal in edit mode with a copy of the displayed record
// id. Dates are truncated to YYYY-MM-DD.
func (c *Controller[T]) OpenEdit(id string) error {
	c.mu.Lock()
	if c.modal.Phase != Closed {
		c.mu.Unlock()
		return ErrModalState
	}
	rec, ok := c.displayed(id)
	if !ok {
		c.mu.Unlock()
		return ErrNotDisplayed
	}
	draft, err := c.schema.DraftOf(rec)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.modal = Modal{Phase: Open, Mode: ModeEdit, ID: id, Draft: draft}
	c.mu.Unlock()
	c.changed()
	return nil
}

// SetField changes one draft value of the open modal.
func (c *Controller[T]) SetField(name, value string) error {
	if _, ok := c.schema.Field(name); !ok {
		return domain.NewValidationError("unknown field", map[string]string{name: "unknown field"})
	}
	c.mu.Lock()
	if c.modal.Phase != Open {
		c.mu.Unlock()
		return ErrModalState
	}
	c.modal.Draft[name] = value
	c.mu.Unlock()
	c.changed()
	return nil
}

// Cancel closes the open modal and discards its draft.
func (c *Controller[T]) Cancel() error {
	c.mu.Lock()
	if c.modal.Phase != Open {
		c.mu.Unlock()
		return ErrModalState
	}
	c.modal = Modal{}
	c.mu.Unlock()
	c.changed()
	return nil
}

// Submit submits the open modal's draft in its current mode.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.Lock()
	m := c.modal
	draft := m.Draft.Clone()
	c.mu.Unlock()

	if m.Phase != Open {
		return ErrModalState
	}
	if m.Mode == ModeEdit {
		return c.SubmitUpdate(ctx, m.ID, draft)
	}
	return c.SubmitCreate(ctx, draft)
}

// SubmitCreate creates a record from draft. The modal must be open in
// create mode.
func (c *Controller[T]) SubmitCreate(ctx context.Context, draft schema.Draft) error {
	return c.submit(ctx, ModeCreate, "", draft)
}

// SubmitUpdate updates record id from draft. The modal must be open editing
// id.
func (c *Controller[T]) SubmitUpdate(ctx context.Context, id string, draft schema.Draft) error {
	return c.submit(ctx, ModeEdit, id, draft)
}

// submit runs Open -> Submitting -> Closed, or back to Open with the error
// attached and the draft kept. Success refetches; the refetch reports its
// own failure.
func (c *Controller[T]) submit(ctx context.Context, mode Mode, id string, draft schema.Draft) error {
	c.mu.Lock()
	if c.modal.Phase != Open || c.modal.Mode != mode || c.modal.ID != id {
		c.mu.Unlock()
		return ErrModalState
	}
	draft = draft.Clone()
	c.modal.Draft = draft

	body, err := c.schema.Body(draft)
	if err != nil {
		c.modal.Err = err
		c.mu.Unlock()
		c.fail("please correct the highlighted fields", err)
		c.changed()
		return err
	}
	c.modal.Phase = Submitting
	c.modal.Err = nil
	c.mu.Unlock()
	c.changed()

	action := "create"
	if mode == ModeEdit {
		_, err = c.api.Update(ctx, id, body)
		action = "update"
	} else {
		_, err = c.api.Create(ctx, body)
	}

	c.mu.Lock()
	if err != nil {
		c.modal.Phase = Open
		c.modal.Err = err
		c.mu.Unlock()
		c.log.WarnContext(ctx, action+" record failed", slog.String("id", id), slog.Any("error", err))
		c.fail("could not "+action+" the record", err)
		c.changed()
		return err
	}
	c.modal = Modal{}
	c.mu.Unlock()

	c.notify.Notify(Notification{Level: LevelSuccess, Message: "record " + action + "d"})
	c.changed()
	_ = c.Refetch(ctx)
	return nil
}

// RequestRemove marks the displayed record id for removal. Nothing is sent
// until ConfirmRemove.
func (c *Controller[T]) RequestRemove(id string) error {
	c.mu.Lock()
	if _, ok := c.displayed(id); !ok {
		c.mu.Unlock()
		return ErrNotDisplayed
	}
	c.pending = id
	c.mu.Unlock()
	c.changed()
	return nil
}

// CancelRemove drops a pending removal.
func (c *Controller[T]) CancelRemove() {
	c.mu.Lock()
	c.pending = ""
	c.mu.Unlock()
	c.changed()
}

// ConfirmRemove deletes the pending record and refetches. On failure it
// notifies and leaves the displayed page untouched.
func (c *Controller[T]) ConfirmRemove(ctx context.Context) error {
	c.mu.Lock()
	id := c.pending
	c.pending = ""
	c.mu.Unlock()
	if id == "" {
		return ErrNoPendingRemoval
	}
	c.changed()

	if err := c.api.Delete(ctx, id); err != nil {
		c.log.WarnContext(ctx, "delete record failed", slog.String("id", id), slog.Any("error", err))
		c.fail("could not delete the record", err)
		return err
	}

	c.notify.Notify(Notification{Level: LevelSuccess, Message: "record deleted"})
	_ = c.Refetch(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State[T]{
		Query:          cloneQuery(c.query),
		Modal:          c.modal,
		PendingRemoval: c.pending,
		Loading:        c.loading,
	}
	if c.modal.Draft != nil {
		s.Modal.Draft = c.modal.Draft.Clone()
	}
	if c.page != nil {
		p := *c.page
		p.Items = slices.Clone(c.page.Items)
		s.Page = &p
	}
	return s
}

// displayed finds id on the held page. Callers hold c.mu.
func (c *Controller[T]) displayed(id string) (T, bool) {
	var zero T
	if c.page == nil || id == "" {
		return zero, false
	}
	for _, rec := range c.page.Items {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	return zero, false
}

func (c *Controller[T]) fail(fallback string, err error) {
	c.notify.Notify(Notification{
		Level:   LevelError,
		Message: userMessage(err, fallback),
		Err:     err,
	})
}

func (c *Controller[T]) changed() {
	if c.change != nil {
		c.change()
	}
}

func cloneQuery(q domain.PageRequest) domain.PageRequest {
	q.Filter = maps.Clone(q.Filter)
	if q.Filter == nil {
		q.Filter = map[string]string{}
	}
	return q
}
