package query

// Page is the envelope returned by paginated list endpoints.
type Page[T any] struct {
	Items        []T `json:"transactions"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPage builds the envelope. A nil items slice is rendered as [].
func NewPage[T any](items []T, p Params, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:        items,
		CurrentPage:  p.Page,
		TotalPages:   TotalPages(total, p.PageSize),
		TotalItems:   total,
		ItemsPerPage: p.PageSize,
	}
}

// TotalPages is ceil(total/size), zero when nothing matched.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
