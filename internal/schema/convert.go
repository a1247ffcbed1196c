package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/simp-lee/casedesk/internal/domain"
)

// Body validates d and converts it into a request payload. Integer and number
// fields become numbers, dates stay in domain.DateLayout, empty optional
// numbers and dates become null. Fields absent from d are left out so a
// partial draft yields a partial body.
func (s *Schema) Body(d Draft) (Body, error) {
	if err := s.Validate(d); err != nil {
		return nil, err
	}

	b := make(Body, len(d))
	for _, f := range s.fields {
		raw, ok := d[f.Name]
		if !ok {
			continue
		}
		v := strings.TrimSpace(raw)
		if v == "" {
			switch f.Kind {
			case String, Enum:
				b[f.Name] = ""
			default:
				b[f.Name] = nil
			}
			continue
		}
		switch f.Kind {
		case Integer:
			n, _ := strconv.ParseInt(v, 10, 64)
			b[f.Name] = n
		case Number:
			n, _ := strconv.ParseFloat(v, 64)
			b[f.Name] = n
		default:
			b[f.Name] = v
		}
	}
	return b, nil
}

// DraftOf copies the schema fields of rec into a Draft. rec is any value that
// encodes to a JSON object with the schema's field names. Date fields are
// truncated to domain.DateLayout even when rec carries full timestamps.
func (s *Schema) DraftOf(rec any) (Draft, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", s.name, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", s.name, err)
	}

	d := make(Draft, len(s.fields))
	for _, f := range s.fields {
		text, err := editText(f, obj[f.Name])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.name, f.Name, err)
		}
		d[f.Name] = text
	}
	return d, nil
}

func editText(f Field, v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		if f.Kind == Date {
			date, err := domain.ParseDate(val)
			if err != nil {
				return "", err
			}
			return date.String(), nil
		}
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}
