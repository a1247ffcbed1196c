package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the edit format of date-valued fields.
const DateLayout = "2006-01-02"

// Date is a date-valued record field. It accepts either DateLayout or RFC 3339
// on input and is stored and returned as a full timestamp at midnight UTC.
// The calendar day of a timestamp is read in the timestamp's own offset.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses DateLayout or RFC 3339 text. Empty text yields the zero Date.
// "2024-01-15T00:30:00+05:00" is 2024-01-15.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want %s or RFC 3339", s, DateLayout)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// day returns the calendar day of d as midnight UTC.
func (d Date) day() time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// MarshalJSON encodes the zero Date as null and others as RFC 3339.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.day().Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s: want a JSON string", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// String returns the DateLayout form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.day(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = Date{Time: v.UTC()}
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

// scanText accepts the text forms drivers use for timestamp columns.
func (d *Date) scanText(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{Time: t.UTC()}
			return nil
		}
	}
	return fmt.Errorf("cannot scan %q into Date", s)
}

// GormDataType maps Date onto the dialect's timestamp column type.
func (Date) GormDataType() string {
	return "time"
}
