// Package catalog lists the record types served and managed by casedesk.
package catalog

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/listctl"
	"github.com/simp-lee/casedesk/internal/module/record"
	"github.com/simp-lee/casedesk/internal/recordapi"
	"github.com/simp-lee/casedesk/internal/schema"
)

// APIPrefix is the path prefix of every record resource.
const APIPrefix = "/api/v1"

// RouteModule registers the REST routes of one record type.
type RouteModule interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// Kind binds a record type to its schema, its server module and its client
// controller.
type Kind struct {
	Domain   string // health, education, justice
	Resource string // URL segment, e.g. "addiction-cases"
	Title    string
	Schema   *schema.Schema

	model   any
	module  func(db *gorm.DB) RouteModule
	session func(t *recordapi.Transport, opts ...listctl.Option) listctl.Session
}

// Name is "<domain>/<resource>".
func (k Kind) Name() string {
	return k.Domain + "/" + k.Resource
}

// APIPath is the absolute collection path on the server.
func (k Kind) APIPath() string {
	return APIPrefix + "/" + k.Name()
}

// Model returns a pointer to a zero record, for migrations.
func (k Kind) Model() any {
	return k.model
}

// Module builds the server module over db.
func (k Kind) Module(db *gorm.DB) RouteModule {
	return k.module(db)
}

// Session builds a list controller talking to the server through t.
func (k Kind) Session(t *recordapi.Transport, opts ...listctl.Option) listctl.Session {
	return k.session(t, opts...)
}

func kind[T domain.Record](domainName, resource, title string, s *schema.Schema) Kind {
	k := Kind{
		Domain:   domainName,
		Resource: resource,
		Title:    title,
		Schema:   s,
		model:    new(T),
	}
	path := k.Name()
	k.module = func(db *gorm.DB) RouteModule {
		return record.New[T](db, path, s)
	}
	k.session = func(t *recordapi.Transport, opts ...listctl.Option) listctl.Session {
		return listctl.New[T](recordapi.NewClient[T](t, k.APIPath()), s, opts...)
	}
	return k
}

var kinds = []Kind{
	kind[domain.AddictionCase]("health", "addiction-cases", "Addiction cases", addictionCaseSchema),
	kind[domain.Student]("education", "students", "Students", studentSchema),
	kind[domain.ElderlyBeneficiary]("justice", "elderly-beneficiaries", "Elderly beneficiaries", elderlyBeneficiarySchema),
}

// All returns every kind in display order.
func All() []Kind {
	return slices.Clone(kinds)
}

// Lookup finds a kind by "<domain>/<resource>" or by resource alone.
func Lookup(name string) (Kind, bool) {
	name = strings.Trim(strings.ToLower(strings.TrimSpace(name)), "/")
	for _, k := range kinds {
		if name == k.Name() || name == k.Resource {
			return k, true
		}
	}
	return Kind{}, false
}

// Models returns the models of every kind, for AutoMigrate.
func Models() []any {
	out := make([]any, len(kinds))
	for i, k := range kinds {
		out[i] = k.model
	}
	return out
}

// Modules builds the server module of every kind.
func Modules(db *gorm.DB) []RouteModule {
	out := make([]RouteModule, len(kinds))
	for i, k := range kinds {
		out[i] = k.Module(db)
	}
	return out
}
