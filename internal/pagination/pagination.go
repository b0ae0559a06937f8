// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import (
	"strconv"
	"strings"
)

// DefaultSize is the number of items shown per list page.
const DefaultSize = 10

// Window is the resolved position of a page inside a result set.
type Window struct {
	Number   int
	Size     int
	NumPages int
	Total    int64
}

// Offset is the index of the first item on the page. Pages past the end
// report Total so the offset never overflows.
func (w Window) Offset() int {
	if w.Empty() {
		return int(w.Total)
	}
	return (w.Number - 1) * w.Size
}

// Empty reports whether the page lies past the last item.
func (w Window) Empty() bool {
	return w.Total == 0 || w.Number > w.NumPages
}

// Resolve parses a raw page parameter against total items.
// Missing, non-numeric and non-positive values mean page 1. Numbers past the
// last page are kept so the caller can return an empty page.
func Resolve(raw string, total int64, size int) Window {
	if size <= 0 {
		size = DefaultSize
	}
	if total < 0 {
		total = 0
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number < 1 {
		number = 1
	}

	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	return Window{Number: number, Size: size, NumPages: numPages, Total: total}
}

// Page is one page of items plus what templates need to draw navigation.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int64
}

// NewPage wraps items fetched for w.
func NewPage[T any](w Window, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Number: w.Number, NumPages: w.NumPages, Total: w.Total}
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextNumber() int {
	return p.Number + 1
}

// PreviousNumber never points past the last page, so it is a real page
// even when Number is out of range.
func (p *Page[T]) PreviousNumber() int {
	return min(p.Number-1, p.NumPages)
}

// Len is the number of items on this page.
func (p *Page[T]) Len() int {
	return len(p.Items)
}

// PageRange lists every page number, 1..NumPages.
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}
