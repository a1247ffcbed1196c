package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "date layout", in: "1950-03-04", want: "1950-03-04"},
		{name: "rfc3339", in: "1950-03-04T23:10:00Z", want: "1950-03-04"},
		{name: "rfc3339 with offset keeps its calendar day", in: "1950-03-05T01:00:00+02:00", want: "1950-03-05"},
		{name: "positive offset past midnight", in: "2024-01-15T00:30:00+05:00", want: "2024-01-15"},
		{name: "negative offset before midnight", in: "2024-01-15T23:30:00-08:00", want: "2024-01-15"},
		{name: "empty", in: "  ", want: ""},
		{name: "garbage", in: "04/03/1950", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %q; want %q", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var rec struct {
		Born Date `json:"born"`
	}
	if err := json.Unmarshal([]byte(`{"born":"1950-03-04"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !rec.Born.Equal(time.Date(1950, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Born = %v", rec.Born)
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"born":"1950-03-04T00:00:00Z"}` {
		t.Errorf("marshal = %s; want full timestamp", out)
	}

	rec.Born = Date{Time: time.Date(2024, 1, 15, 0, 30, 0, 0, time.FixedZone("PKT", 5*60*60))}
	out, err = json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal offset date: %v", err)
	}
	if string(out) != `{"born":"2024-01-15T00:00:00Z"}` {
		t.Errorf("marshal offset date = %s; want its own calendar day", out)
	}
	if v, _ := rec.Born.Value(); !v.(time.Time).Equal(NewDate(2024, time.January, 15).Time) {
		t.Errorf("Value() of offset date = %v; want 2024-01-15 UTC", v)
	}

	if err := json.Unmarshal([]byte(`{"born":null}`), &rec); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !rec.Born.IsZero() {
		t.Error("null should yield the zero Date")
	}
	out, _ = json.Marshal(rec)
	if string(out) != `{"born":null}` {
		t.Errorf("zero Date marshal = %s; want null", out)
	}

	if err := json.Unmarshal([]byte(`{"born":19500304}`), &rec); err == nil {
		t.Error("expected error for non-string date")
	}
}

func TestDate_ScanAndValue(t *testing.T) {
	want := NewDate(1950, time.March, 4)

	tests := []struct {
		name string
		src  any
	}{
		{"time", want.Time},
		{"rfc3339 text", "1950-03-04T00:00:00Z"},
		{"sqlite text", []byte("1950-03-04 00:00:00")},
		{"date text", "1950-03-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan(%v) error = %v", tt.src, err)
			}
			if !d.Equal(want.Time) {
				t.Errorf("Scan(%v) = %v; want %v", tt.src, d, want)
			}
		})
	}

	var d Date
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("Scan(nil) = %v, %v; want zero, nil", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}

	v, err := want.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if tv, ok := v.(time.Time); !ok || !tv.Equal(want.Time) {
		t.Errorf("Value() = %v; want %v", v, want.Time)
	}
	if v, _ := (Date{}).Value(); v != nil {
		t.Errorf("zero Value() = %v; want nil", v)
	}
}

func TestBaseModel_RecordID(t *testing.T) {
	rec := AddictionCase{BaseModel: BaseModel{ID: 42}}
	var r Record = rec
	if r.RecordID() != "42" {
		t.Errorf("RecordID() = %q; want %q", r.RecordID(), "42")
	}
}
