// Package pagination provides offset pagination for list endpoints
package pagination

import (
	"dabwish/pkg/errors"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Params are the zero-based page number and the page size requested by a client
type Params struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize applies defaults: a non-positive size becomes DefaultSize, sizes
// above MaxSize are clamped and a negative page becomes 0
func (p Params) Normalize() Params {
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	if p.Page < 0 {
		p.Page = 0
	}
	return p
}

// Validate rejects parameters a client should not send
func (p Params) Validate() error {
	if p.Page < 0 {
		return errors.NewValidationError("page", "must be non-negative", p.Page)
	}
	if p.Size < 0 {
		return errors.NewValidationError("size", "must be non-negative", p.Size)
	}
	return nil
}

// Offset is the number of rows to skip
func (p Params) Offset() int {
	return p.Page * p.Size
}

// Limit is the number of rows to fetch
func (p Params) Limit() int {
	return p.Size
}

// Page is one slice of a paginated collection
type Page[T any] struct {
	Items         []T  `json:"content"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	HasNext       bool `json:"hasNext"`
}

// NewPage builds a page from the fetched items and the total row count
func NewPage[T any](items []T, total int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Page[T]{
		Items:         items,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    pages,
		HasNext:       p.Offset()+len(items) < total,
	}
}
