package loja

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ImagePrefix is the storage prefix under which product images live.
const ImagePrefix = "products/"

// DefaultPageSize is the catalog page size used when none is configured.
const DefaultPageSize = 20

// ImagePath returns the storage path of a product's image. The path is derived
// from the product id so that a replacement overwrites the previous object.
func ImagePath(id uuid.UUID) string {
	return ImagePrefix + id.String()
}

// ProductIDFromImagePath is the inverse of ImagePath.
func ProductIDFromImagePath(p string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(p, ImagePrefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pricePattern is the only price shape accepted from forms: digits with an
// optional decimal point or comma. Signs, exponents, hex and digit
// separators are not.
var pricePattern = regexp.MustCompile(`^[0-9]+([.,][0-9]+)?$`)

// ParsePrice converts a price typed into a form into a number.
// Both "99.99" and "99,99" are accepted.
func ParsePrice(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("parse price: %w: price is required", ErrInvalidInput)
	}

	if !pricePattern.MatchString(raw) {
		return 0, fmt.Errorf("parse price %q: %w", s, ErrInvalidInput)
	}

	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		// Only overflow reaches here.
		return 0, fmt.Errorf("parse price %q: %w", s, ErrInvalidInput)
	}

	return v, nil
}

// ParsePage reads a 1-based page number. Anything that is not a positive
// integer is treated as page 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate slices items into page number of the given size.
// TotalPages is never below 1; a page past the end has no items.
func Paginate(items []Product, number, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}

	total := len(items)
	totalPages := max(1, (total+size-1)/size)

	page := Page{
		Items:      []Product{},
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}

	start := (number - 1) * size
	if start >= total {
		return page
	}
	end := min(start+size, total)

	page.Items = items[start:end]
	return page
}

// IsValidPath validates that a path string meets the requirements for a storage path.
// It checks that the path:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8
//   - does not contain "." segments (/., /./, or ending with /.)
//   - does not contain null bytes, control characters (< 0x20), DEL (0x7f), or whitespace
//
// Returns true if the path is valid, false otherwise.
func IsValidPath(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' {
		return false
	}

	if strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "..") {
		return false
	}

	if strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	if p == "/." || strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") {
		return false
	}

	for _, r := range p {
		if r == 0 || r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}
