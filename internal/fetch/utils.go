package fetch

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Text returns the whitespace trimmed text content of the first node
// matching expr under top. ok is false if no node matches.
func Text(top *html.Node, expr string) (text string, ok bool, err error) {
	n, err := htmlquery.Query(top, expr)
	if err != nil {
		return "", false, err
	}
	if n == nil {
		return "", false, nil
	}
	return strings.TrimSpace(htmlquery.InnerText(n)), true, nil
}

// IsBlank reports if a table cell holds no value. Empty cells are
// often filled with a non-breaking space, which unicode considers a
// space.
func IsBlank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}
