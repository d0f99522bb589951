// AngelaMos | 2026
// pagination.go

package core

import (
	"net/http"
	"strconv"
	"strings"
)

const MaxPageLimit = 50

type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page to >= 1 and limit to [1, MaxPageLimit]. A zero limit
// means "not supplied" and falls back to defaultLimit.
func NewPage(page, limit, defaultLimit int) Page {
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func PageFromRequest(r *http.Request, defaultLimit int) Page {
	return NewPage(
		ParseIntQuery(r, "page", 1),
		ParseIntQuery(r, "limit", 0),
		defaultLimit,
	)
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

func (p Page) Paginate(total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}

func ParseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

// SortDirection maps a sortOrder query value onto SQL. Anything other than
// "asc" sorts newest first.
func SortDirection(r *http.Request) string {
	if strings.EqualFold(r.URL.Query().Get("sortOrder"), "asc") {
		return "ASC"
	}
	return "DESC"
}

// EscapeLike escapes LIKE wildcards in user supplied search terms.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
