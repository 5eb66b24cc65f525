package repository

import (
	"bytes"
	"encoding/json"
	"strconv"
)

const (
	// DefaultPaginationLimit is the default number of items per page.
	DefaultPaginationLimit = 10
	// DefaultPage is the page returned when none is requested.
	DefaultPage = 1
)

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// NewPagination computes page metadata, Pages being ceil(total/limit).
func NewPagination(total int64, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(total / int64(limit))
		if total%int64(limit) != 0 {
			pages++
		}
	}
	return Pagination{
		Total: total,
		Page:  page,
		Pages: pages,
		Limit: limit,
	}
}

// parsePositive returns the integer in s, or def when s is not a positive integer.
func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// SortOrder is one applied sort key, Order being 1 (ascending) or -1 (descending).
type SortOrder struct {
	Field string
	Order int
}

// AppliedSort lists sort keys by precedence. It encodes as a JSON object whose
// key order is the precedence, e.g. {"price":-1,"name":1}.
type AppliedSort []SortOrder

func (s AppliedSort) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, o := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(o.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(o.Order))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
