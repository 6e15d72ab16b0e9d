package pagination

import (
	"context"
	"errors"
)

// ErrPageNotFound is returned for a page number outside the valid range.
// Out-of-range pages are a not-found condition, not an empty page.
var ErrPageNotFound = errors.New("page not found")

// Page is a fixed-size, 1-indexed slice of an ordered result set.
type Page[T any] struct {
	Items   []T
	Number  int
	PerPage int
	Total   int
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool { return p.Number*p.PerPage < p.Total }

// HasPrev reports whether an earlier page exists.
func (p *Page[T]) HasPrev() bool { return p.Number > 1 }

// NextPage returns the next page number, or 0 when on the last page.
func (p *Page[T]) NextPage() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return 0
}

// PrevPage returns the previous page number, or 0 when on the first page.
func (p *Page[T]) PrevPage() int {
	if p.HasPrev() {
		return p.Number - 1
	}
	return 0
}

// Pages returns the number of pages in the result set (at least 1, so an
// empty set still has a valid first page).
func (p *Page[T]) Pages() int {
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Paginate slices an ordered source into the requested page. count returns
// the total size of the result set; list returns the ordered items for a
// limit/offset window. Requesting page 1 of an empty set yields an empty
// page; any other out-of-range number yields ErrPageNotFound.
func Paginate[T any](
	ctx context.Context,
	number, perPage int,
	count func(ctx context.Context) (int, error),
	list func(ctx context.Context, limit, offset int) ([]T, error),
) (*Page[T], error) {
	if number < 1 || perPage < 1 {
		return nil, ErrPageNotFound
	}
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}
	// Compare against the page count rather than a computed offset: an
	// attacker-sized number would overflow (number-1)*perPage and slip
	// past an offset bound as a negative value.
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	if number > pages {
		return nil, ErrPageNotFound
	}
	offset := (number - 1) * perPage
	items, err := list(ctx, perPage, offset)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Number: number, PerPage: perPage, Total: total}, nil
}
