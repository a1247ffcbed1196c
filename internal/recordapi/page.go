package recordapi

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/simp-lee/casedesk/internal/domain"
)

// wirePage accepts every page shape the backends have used. The canonical
// names are items, page, limit, total and totalPages.
type wirePage struct {
	Items json.RawMessage `json:"items"`
	Data  json.RawMessage `json:"data"`

	Total      *int64 `json:"total"`
	TotalItems *int64 `json:"totalItems"`

	Page        *int `json:"page"`
	CurrentPage *int `json:"currentPage"`

	Limit         *int `json:"limit"`
	PageSize      *int `json:"pageSize"`
	PageSizeSnake *int `json:"page_size"`

	TotalPages      *int `json:"totalPages"`
	TotalPagesSnake *int `json:"total_pages"`
}

// decodePage normalises raw into a PageResult. Missing page and limit fall
// back to the request; a missing total falls back to the item count and a
// missing totalPages is computed. A bare JSON array is accepted as one page.
func decodePage[T any](raw json.RawMessage, req domain.PageRequest) (*domain.PageResult[T], error) {
	out := &domain.PageResult[T]{Items: []T{}}

	if trimmed := firstByte(raw); trimmed == '[' {
		if err := json.Unmarshal(raw, &out.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		out.Page, out.Limit = req.Page, req.Limit
		out.Total = int64(len(out.Items))
		out.TotalPages = totalPages(out.Total, out.Limit)
		return out, nil
	}

	var w wirePage
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	items := w.Items
	if len(items) == 0 || string(items) == "null" {
		items = w.Data
	}
	if len(items) > 0 && string(items) != "null" {
		if err := json.Unmarshal(items, &out.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}

	out.Page = firstInt(req.Page, w.Page, w.CurrentPage)
	out.Limit = firstInt(req.Limit, w.Limit, w.PageSize, w.PageSizeSnake)

	switch {
	case w.Total != nil:
		out.Total = *w.Total
	case w.TotalItems != nil:
		out.Total = *w.TotalItems
	default:
		out.Total = int64(len(out.Items))
	}

	out.TotalPages = firstInt(totalPages(out.Total, out.Limit), w.TotalPages, w.TotalPagesSnake)
	return out, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// firstInt returns the first non-nil candidate, or fallback.
func firstInt(fallback int, candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}
