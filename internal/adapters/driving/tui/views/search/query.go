package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/planroom/internal/core/domain"
)

// ParseQuery splits scope tokens out of a query line.
//
//	doc:A-601.pdf     restrict to one uploaded file
//	page:4            restrict to one page
//	pages:3-7         restrict to a page range
//
// Everything else is the query text.
func ParseQuery(line string) (string, domain.Filters, error) {
	var (
		f     domain.Filters
		words []string
	)
	for _, field := range strings.Fields(line) {
		name, value, ok := strings.Cut(field, ":")
		if !ok || value == "" {
			words = append(words, field)
			continue
		}
		switch strings.ToLower(name) {
		case "doc":
			f.DocumentID = domain.DocumentID(value)
		case "page":
			n, err := parsePage(value)
			if err != nil {
				return "", domain.Filters{}, err
			}
			f.PageFrom, f.PageTo = n, n
		case "pages":
			from, to, err := parseRange(value)
			if err != nil {
				return "", domain.Filters{}, err
			}
			f.PageFrom, f.PageTo = from, to
		default:
			words = append(words, field)
		}
	}
	return strings.Join(words, " "), f, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPage, s)
	}
	return n, nil
}

func parseRange(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		n, err := parsePage(s)
		return n, n, err
	}
	from, err := parsePage(a)
	if err != nil {
		return 0, 0, err
	}
	to, err := parsePage(b)
	if err != nil {
		return 0, 0, err
	}
	if from > to {
		return 0, 0, fmt.Errorf("%w: %d is after %d", ErrInvalidPage, from, to)
	}
	return from, to, nil
}

// describeFilters renders the active scope for the header line.
func describeFilters(f domain.Filters) string {
	var parts []string
	if f.DocumentID != "" {
		parts = append(parts, "one document")
	}
	switch {
	case f.PageFrom > 0 && f.PageFrom == f.PageTo:
		parts = append(parts, fmt.Sprintf("page %d", f.PageFrom))
	case f.PageFrom > 0 || f.PageTo > 0:
		parts = append(parts, fmt.Sprintf("pages %d-%d", f.PageFrom, f.PageTo))
	}
	return strings.Join(parts, ", ")
}
