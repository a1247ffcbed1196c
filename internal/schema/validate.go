package schema

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/casedesk/internal/domain"
)

// validate is safe for concurrent use and caches parsed tags.
var validate = validator.New()

// Validate checks every field of d against its kind, required flag, enum
// options and rule. It returns nil or a validation *domain.AppError whose
// Fields map holds one message per failing field, in the same
// "tag[=param]" form the server uses.
func (s *Schema) Validate(d Draft) error {
	var fields map[string]string
	for _, f := range s.fields {
		if msg := f.check(strings.TrimSpace(d[f.Name])); msg != "" {
			if fields == nil {
				fields = make(map[string]string)
			}
			fields[f.Name] = msg
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationError("please correct the highlighted fields", fields)
	}
	return nil
}

// check returns "" when v is acceptable for f.
func (f Field) check(v string) string {
	switch f.Kind {
	case Integer, Number:
		if v == "" {
			if f.Required {
				return "required"
			}
			return ""
		}
		n, msg := parseNumber(f.Kind, v)
		if msg != "" {
			return msg
		}
		if f.Rule == "" {
			return ""
		}
		return describe(validate.Var(n, f.Rule))
	default:
		return describe(validate.Var(v, f.tag()))
	}
}

// tag composes the validator tag for text-valued kinds.
func (f Field) tag() string {
	parts := []string{"omitempty"}
	if f.Required {
		parts[0] = "required"
	}
	switch f.Kind {
	case Date:
		parts = append(parts, "datetime="+domain.DateLayout)
	case Enum:
		parts = append(parts, "oneof="+strings.Join(f.Options, " "))
	}
	if f.Rule != "" {
		parts = append(parts, f.Rule)
	}
	return strings.Join(parts, ",")
}

func parseNumber(kind Kind, v string) (any, string) {
	if kind == Integer {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, "integer"
		}
		return n, ""
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, "number"
	}
	return n, ""
}

// describe renders the first validator failure as "tag" or "tag=param".
func describe(err error) string {
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		msg := ve[0].Tag()
		if ve[0].Param() != "" {
			msg += "=" + ve[0].Param()
		}
		return msg
	}
	return err.Error()
}
