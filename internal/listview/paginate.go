// Package listview holds the state behind the clients and contracts lists:
// the loaded records, search and filter inputs, pagination, the row action
// menu and the create/update/delete flows.
package listview

// DefaultPageSize is the number of rows per list page.
const DefaultPageSize = 6

// Paginator tracks the current page of a list. Pages are 1-based.
type Paginator struct {
	PageSize int
	page     int
}

// NewPaginator returns a paginator on page 1.
func NewPaginator(size int) Paginator {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Paginator{PageSize: size, page: 1}
}

// Page returns the current page.
func (p *Paginator) Page() int {
	if p.page < 1 {
		return 1
	}
	return p.page
}

// TotalPages returns ceil(n / PageSize).
func (p *Paginator) TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	size := p.size()
	return (n + size - 1) / size
}

// SetPage moves to page, clamped to [1, max(1, TotalPages(n))].
func (p *Paginator) SetPage(page, n int) {
	last := max(1, p.TotalPages(n))
	p.page = min(max(page, 1), last)
}

// Next advances one page if possible.
func (p *Paginator) Next(n int) {
	p.SetPage(p.Page()+1, n)
}

// Prev goes back one page if possible.
func (p *Paginator) Prev(n int) {
	p.SetPage(p.Page()-1, n)
}

// Reset returns to page 1.
func (p *Paginator) Reset() {
	p.page = 1
}

// Bounds returns the [start, end) indexes of the current page within n
// items. A page past the end is clamped to the last page.
func (p *Paginator) Bounds(n int) (int, int) {
	if n <= 0 {
		return 0, 0
	}
	size := p.size()
	page := min(p.Page(), p.TotalPages(n))
	start := (page - 1) * size
	end := min(start+size, n)
	return start, end
}

func (p *Paginator) size() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// Paginate returns the items on the paginator's current page.
func Paginate[T any](p *Paginator, items []T) []T {
	start, end := p.Bounds(len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
