// Package pagination slices ordered GORM queries into fixed-size pages.
package pagination

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Page is one page of an ordered result set together with the numbers a
// template needs to render navigation.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

func (p *Page[T]) Len() int { return len(p.Items) }

func (p *Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextNumber() int     { return p.Number + 1 }
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

// PageRange lists every page number, for the template page links.
func (p *Page[T]) PageRange() []int {
	out := make([]int, p.NumPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Resolve maps a raw page query value onto a valid page number. Missing or
// non-numeric values give the first page, numbers outside the range give
// the last one, including those too large for an int. An empty result set still has one (empty) page.
func Resolve(raw string, count int64, perPage int) (number, numPages int) {
	if perPage <= 0 {
		perPage = 1
	}
	numPages = int((count + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		return numPages, numPages
	}
	if err != nil {
		return 1, numPages
	}
	if n < 1 || n > numPages {
		return numPages, numPages
	}
	return n, numPages
}

// Paginate counts the rows matched by query and loads the requested page.
// Scopes are applied to the page fetch only, which keeps ordering and joins
// out of the count query.
func Paginate[T any](query *gorm.DB, raw string, perPage int, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, err
	}

	number, numPages := Resolve(raw, count, perPage)
	page := &Page[T]{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
		Items:    []T{},
	}
	if count == 0 {
		return page, nil
	}

	offset := (number - 1) * perPage
	if err := query.Session(&gorm.Session{}).Scopes(scopes...).Offset(offset).Limit(perPage).Find(&page.Items).Error; err != nil {
		return nil, err
	}
	return page, nil
}
