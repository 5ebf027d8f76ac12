package kernel

// DefaultPageSize applies when a caller omits or sends a non-positive per_page.
const DefaultPageSize = 20

// Page represents pagination metadata
type Page struct {
	Number int `json:"current_page"`
	Size   int `json:"per_page"`
	Total  int `json:"total_count"`
	Pages  int `json:"total_pages"`
}

// Paginated is a generic container for paginated data with metadata
type Paginated[T any] struct {
	Items []T  `json:"items"`
	Page  Page `json:"meta"`
}

// NewPaginated creates a paginated result with calculated fields
func NewPaginated[T any](items []T, page, size, total int) Paginated[T] {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	if items == nil {
		items = []T{}
	}

	return Paginated[T]{
		Items: items,
		Page: Page{
			Number: page,
			Size:   size,
			Total:  total,
			Pages:  pages,
		},
	}
}

func (p Paginated[T]) HasNext() bool {
	return p.Page.Number < p.Page.Pages
}

func (p Paginated[T]) HasPrevious() bool {
	return p.Page.Number > 1
}

// NextPage returns the next page number or nil.
func (p Paginated[T]) NextPage() *int {
	if !p.HasNext() {
		return nil
	}
	n := p.Page.Number + 1
	return &n
}

// PrevPage returns the previous page number or nil.
func (p Paginated[T]) PrevPage() *int {
	if !p.HasPrevious() {
		return nil
	}
	n := p.Page.Number - 1
	return &n
}

// Map converts items keeping the metadata.
func Map[T, U any](p Paginated[T], fn func(T) U) Paginated[U] {
	out := make([]U, len(p.Items))
	for i, it := range p.Items {
		out[i] = fn(it)
	}
	return Paginated[U]{Items: out, Page: p.Page}
}

// PaginationOptions holds options for pagination queries
type PaginationOptions struct {
	Page     int
	PageSize int
}

// Normalize clamps page to 1 and page size to the default.
func (o PaginationOptions) Normalize() PaginationOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	return o
}

func (o PaginationOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}
