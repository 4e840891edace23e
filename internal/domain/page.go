package domain

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is offset pagination: From is a non-negative offset, Size a positive
// page length. Invalid values fail before any state is read.
type Page struct {
	From int
	Size int
}

func NewPage(from, size int) (Page, error) {
	if from < 0 {
		return Page{}, ErrValidation("from must be >= 0")
	}
	if size < 1 {
		return Page{}, ErrValidation("size must be >= 1")
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return Page{From: from, Size: size}, nil
}

func DefaultPage() Page { return Page{From: 0, Size: defaultPageSize} }
