package contents

import (
	"errors"
	"strconv"
	"strings"
)

const DefaultPageSize = 3

// Page describes one page of a paginated listing.
type Page struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

// ResolvePage picks the page to serve for the raw page query value.
// A missing or non-integer value serves the first page and any out of range
// number serves the last one. An empty listing still has one (empty) page.
func ResolvePage(raw string, count, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	numPages := (count + perPage - 1) / perPage
	if numPages == 0 {
		numPages = 1
	}

	page := Page{
		Number:   1,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return page
	}

	number, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			page.Number = numPages
		}

		return page
	}

	if number < 1 || number > numPages {
		page.Number = numPages

		return page
	}

	page.Number = number

	return page
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}

func (p Page) PreviousNumber() int {
	return p.Number - 1
}

func (p Page) NextNumber() int {
	return p.Number + 1
}
