package pkg

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/casedesk/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
	defaultSort  = "id:desc"
)

// reservedParams lists query parameter names used for pagination, search and
// sorting, not for filtering.
var reservedParams = map[string]bool{
	"page":      true,
	"limit":     true,
	"page_size": true,
	"sort":      true,
	"search":    true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts pagination, search, sorting, and filtering parameters from query params.
// "page_size" is accepted as an alias of "limit".
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	rawLimit := c.Query("limit")
	if rawLimit == "" {
		rawLimit = c.Query("page_size")
	}
	limit, _ := strconv.Atoi(rawLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	sort := c.DefaultQuery("sort", defaultSort)
	search := strings.TrimSpace(c.Query("search"))

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter[key] = values[0]
		}
	}

	return domain.PageRequest{
		Page:   page,
		Limit:  limit,
		Search: search,
		Sort:   sort,
		Filter: filter,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the page request.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (req.Page - 1) * req.Limit
		return db.Offset(offset).Limit(req.Limit)
	}
}

// Sort returns a GORM scope that applies ORDER BY based on the page request.
// Only field names present in the allowed list are accepted; others are silently ignored.
// Field names are validated against a strict pattern to prevent SQL injection.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		parts := strings.SplitN(req.Sort, ":", 2)
		if len(parts) != 2 {
			return db
		}

		field := strings.TrimSpace(parts[0])
		direction := strings.TrimSpace(strings.ToLower(parts[1]))

		if direction != "asc" && direction != "desc" {
			return db
		}

		if !validFieldName.MatchString(field) {
			return db
		}

		if !isAllowed(field, allowed) {
			return db
		}

		return db.Order(field + " " + direction)
	}
}

// Filter returns a GORM scope that applies WHERE conditions based on the page request filters.
// Only filter keys present in the allowed list are applied; others are silently ignored.
// Keys ending with "__like" produce a LIKE '%value%' condition; others use exact match.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			if strings.HasSuffix(key, "__like") {
				field := strings.TrimSuffix(key, "__like")
				if !validFieldName.MatchString(field) {
					continue
				}
				if !isAllowed(field, allowed) {
					continue
				}
				db = db.Where(field+" LIKE ? ESCAPE '\\'", "%"+escapeLike(value)+"%")
			} else {
				if !validFieldName.MatchString(key) {
					continue
				}
				if !isAllowed(key, allowed) {
					continue
				}
				db = db.Where(key+" = ?", value)
			}
		}
		return db
	}
}

// Search returns a GORM scope matching req.Search case-insensitively as a
// substring of any of the given fields. An empty term or field list is a no-op.
func Search(req domain.PageRequest, fields []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term := strings.TrimSpace(req.Search)
		if term == "" {
			return db
		}

		pattern := "%" + strings.ToLower(escapeLike(term)) + "%"
		var clauses []string
		var args []any
		for _, field := range fields {
			if !validFieldName.MatchString(field) {
				continue
			}
			clauses = append(clauses, "LOWER("+field+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		if len(clauses) == 0 {
			return db
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// NewPage builds a PageResult, computing TotalPages as ceil(total/limit).
func NewPage[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.Limit)))
	}

	if items == nil {
		items = []T{}
	}

	return &domain.PageResult[T]{
		Items:      items,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// isAllowed checks if a field name is in the allowed list.
func isAllowed(field string, allowed []string) bool {
	return slices.Contains(allowed, field)
}
