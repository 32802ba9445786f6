package service

import (
	"strconv"
	"strings"

	"forum/internal/models"
)

// PostsPerPage is the listing page size.
const PostsPerPage = 5

// LastPage selects the final page of a listing.
const LastPage = "last"

// Page is one slice of an ordered listing.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Offset is the number of items preceding this page.
func (p *Page[T]) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// NewPage resolves raw against total items. An empty raw value is page 1 and
// "last" is the final page. Anything else that is not an existing page number
// is NotFound, except page 1 of an empty listing.
func NewPage[T any](raw string, total int64, perPage int) (*Page[T], error) {
	numPages := 1
	if total > 0 {
		numPages = int((total + int64(perPage) - 1) / int64(perPage))
	}

	raw = strings.TrimSpace(raw)
	var number int
	switch raw {
	case "":
		number = 1
	case LastPage:
		number = numPages
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, models.NewNotFoundError("Page", raw)
		}
		number = n
	}

	if number < 1 || number > numPages {
		return nil, models.NewNotFoundError("Page", raw)
	}

	return &Page[T]{
		Items:       []T{},
		Number:      number,
		NumPages:    numPages,
		PerPage:     perPage,
		Total:       total,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}, nil
}
