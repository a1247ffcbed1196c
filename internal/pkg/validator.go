package pkg

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/casedesk/internal/domain"
)

var registerOnce sync.Once

// RegisterValidators teaches gin's binding validator about domain types.
// A zero domain.Date is reported as missing so `binding:"required"` works on
// date columns. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			RegisterDateType(v)
		}
	})
}

// RegisterDateType registers the domain.Date type func on v.
func RegisterDateType(v *validator.Validate) {
	v.RegisterCustomTypeFunc(dateValue, domain.Date{})
}

func dateValue(field reflect.Value) any {
	d, ok := field.Interface().(domain.Date)
	if !ok || d.IsZero() {
		return nil
	}
	return d.Time
}
