package listctl

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/schema"
)

type fakeRecord struct {
	ID        int    `json:"id"`
	FullName  string `json:"full_name"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date"`
}

func (r fakeRecord) RecordID() string { return strconv.Itoa(r.ID) }

var _ Session = (*Controller[fakeRecord])(nil)

func testSchema() *schema.Schema {
	return schema.New("people",
		schema.Field{Name: "full_name", Label: "Name", Kind: schema.String, Required: true, Rule: "min=2", Searchable: true},
		schema.Field{Name: "gender", Label: "Gender", Kind: schema.Enum, Required: true, Options: []string{"female", "male"}, Filterable: true, Default: "female"},
		schema.Field{Name: "birth_date", Label: "Born", Kind: schema.Date, Required: true},
	)
}

// fakeAPI is an in-memory RecordAPI. gate, when set, runs inside List before
// the response is computed so tests can control arrival order.
type fakeAPI struct {
	mu       sync.Mutex
	records  []fakeRecord
	requests []domain.PageRequest
	creates  []schema.Body
	updates  []string
	deletes  []string

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	gate func(req domain.PageRequest)
}

func newFakeAPI(n int) *fakeAPI {
	api := &fakeAPI{}
	for i := 1; i <= n; i++ {
		gender := "female"
		if i%2 == 0 {
			gender = "male"
		}
		api.records = append(api.records, fakeRecord{
			ID:        i,
			FullName:  "Person " + strconv.Itoa(i),
			Gender:    gender,
			BirthDate: "1950-03-04T10:30:00Z",
		})
	}
	return api
}

func (f *fakeAPI) List(_ context.Context, req domain.PageRequest) (*domain.PageResult[fakeRecord], error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		gate(req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []fakeRecord
	for _, r := range f.records {
		if g := req.Filter["gender"]; g != "" && r.Gender != g {
			continue
		}
		if req.Search != "" && !strings.Contains(strings.ToLower(r.FullName), strings.ToLower(req.Search)) {
			continue
		}
		matched = append(matched, r)
	}

	start := (req.Page - 1) * req.Limit
	end := min(start+req.Limit, len(matched))
	items := []fakeRecord{}
	if start < len(matched) {
		items = append(items, matched[start:end]...)
	}
	return &domain.PageResult[fakeRecord]{
		Items:      items,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      int64(len(matched)),
		TotalPages: int(math.Ceil(float64(len(matched)) / float64(req.Limit))),
	}, nil
}

func (f *fakeAPI) Create(_ context.Context, body schema.Body) (*fakeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, body)
	if f.createErr != nil {
		return nil, f.createErr
	}
	rec := fakeRecord{ID: len(f.records) + 1, FullName: body["full_name"].(string)}
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, _ schema.Body) (*fakeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &fakeRecord{}, nil
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.records {
		if r.RecordID() == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) lastRequest() domain.PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// recorder collects notifications.
type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}
	}
	return r.notes[len(r.notes)-1]
}

func newTestController(api *fakeAPI, opts ...Option) (*Controller[fakeRecord], *recorder) {
	rec := &recorder{}
	base := []Option{
		WithLimit(10),
		WithNotifier(rec),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New[fakeRecord](api, testSchema(), append(base, opts...)...), rec
}
