package record

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/pkg"
)

const studentsPath = "/api/v1/education/students"

// setupAPIRouter serves the student module over an in-memory database.
func setupAPIRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pkg.RegisterValidators()

	r := gin.New()
	New[domain.Student](setupTestDB(t), "education/students", studentSchema()).
		RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validStudentBody = `{"full_name":"Amina Haddad","gender":"female","birth_date":"2010-05-01",` +
	`"school":"Al Noor Primary","grade":6,"status":"enrolled"}`

func createStudent(t *testing.T, r http.Handler, body string) domain.Student {
	t.Helper()
	w := doJSON(r, http.MethodPost, studentsPath, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data domain.Student `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	return resp.Data
}

func TestHandler_Create(t *testing.T) {
	r := setupAPIRouter(t)

	s := createStudent(t, r, validStudentBody)
	if s.ID == 0 || s.FullName != "Amina Haddad" {
		t.Errorf("created %+v", s)
	}
	if s.BirthDate.String() != "2010-05-01" {
		t.Errorf("BirthDate = %q", s.BirthDate.String())
	}
}

func TestHandler_Create_ValidationError(t *testing.T) {
	r := setupAPIRouter(t)

	w := doJSON(r, http.MethodPost, studentsPath, `{"full_name":"A","gender":"other","grade":13}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d; want 422", w.Code)
	}

	var resp pkg.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]string{
		"full_name":  "min=2",
		"gender":     "oneof=female male",
		"birth_date": "required",
		"grade":      "lte=12",
		"school":     "required",
		"status":     "required",
	}
	for field, msg := range want {
		if resp.Errors[field] != msg {
			t.Errorf("errors[%s] = %q; want %q", field, resp.Errors[field], msg)
		}
	}
}

func TestHandler_Create_MalformedJSON(t *testing.T) {
	r := setupAPIRouter(t)

	w := doJSON(r, http.MethodPost, studentsPath, `{"full_name":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status %d; want 400", w.Code)
	}
}

func TestHandler_Get(t *testing.T) {
	r := setupAPIRouter(t)
	s := createStudent(t, r, validStudentBody)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"existing", fmt.Sprintf("%s/%d", studentsPath, s.ID), http.StatusOK},
		{"missing", studentsPath + "/999", http.StatusNotFound},
		{"invalid id", studentsPath + "/abc", http.StatusUnprocessableEntity},
		{"zero id", studentsPath + "/0", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(r, http.MethodGet, tt.path, ""); w.Code != tt.want {
				t.Errorf("status %d; want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandler_List(t *testing.T) {
	r := setupAPIRouter(t)
	for i := 1; i <= 23; i++ {
		createStudent(t, r, strings.Replace(validStudentBody, "Amina Haddad", fmt.Sprintf("Student %02d", i), 1))
	}

	w := doJSON(r, http.MethodGet, studentsPath+"?page=3&limit=10&sort=id:asc&gender=female", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var resp struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"items", "page", "limit", "total", "totalPages"} {
		if _, ok := resp.Data[key]; !ok {
			t.Errorf("page payload missing %q", key)
		}
	}

	var page domain.PageResult[domain.Student]
	raw, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(raw, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 23 || page.TotalPages != 3 || page.Page != 3 || page.Limit != 10 {
		t.Errorf("page meta = %+v", page)
	}
	if len(page.Items) != 3 || page.Items[0].FullName != "Student 21" {
		t.Errorf("items = %v", studentNames(page.Items))
	}
}

func TestHandler_Update_PartialOverlay(t *testing.T) {
	r := setupAPIRouter(t)
	s := createStudent(t, r, validStudentBody)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("%s/%d", studentsPath, s.ID), `{"status":"at_risk","id":555}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data domain.Student `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := resp.Data
	if got.ID != s.ID || got.Status != "at_risk" || got.FullName != "Amina Haddad" || got.Grade != 6 {
		t.Errorf("updated = %+v", got)
	}
}

func TestHandler_Update_Errors(t *testing.T) {
	r := setupAPIRouter(t)
	s := createStudent(t, r, validStudentBody)
	path := fmt.Sprintf("%s/%d", studentsPath, s.ID)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"validation on merged record", path, `{"grade":0,"status":"asleep"}`, http.StatusUnprocessableEntity},
		{"malformed body", path, `{"grade":`, http.StatusBadRequest},
		{"missing record", studentsPath + "/999", `{"status":"at_risk"}`, http.StatusNotFound},
		{"invalid id", studentsPath + "/x", `{}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(r, http.MethodPut, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("status %d; want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	// A rejected update leaves the stored record intact.
	w := doJSON(r, http.MethodGet, path, "")
	var resp struct {
		Data domain.Student `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Status != "enrolled" || resp.Data.Grade != 6 {
		t.Errorf("stored record changed: %+v", resp.Data)
	}
}

func TestHandler_Delete(t *testing.T) {
	r := setupAPIRouter(t)
	s := createStudent(t, r, validStudentBody)
	path := fmt.Sprintf("%s/%d", studentsPath, s.ID)

	if w := doJSON(r, http.MethodDelete, path, ""); w.Code != http.StatusOK {
		t.Fatalf("delete status %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status %d; want 404", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, studentsPath+"/abc", ""); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid id status %d; want 422", w.Code)
	}
}
