package catalog

import (
	"net/url"
	"slices"
	"strings"

	"github.com/five82/shopfront/internal/shop"
)

// Query is the applied search state: a free-text term and a set of
// lower-cased categories.
type Query struct {
	Search  string
	Filters []string
}

// Empty reports whether q matches everything.
func (q Query) Empty() bool {
	return q.Search == "" && len(q.Filters) == 0
}

// Encode renders q as a query string, search first:
//
//	search=oak+table&filters=decor,lighting
//
// Empty parts are omitted; an empty query encodes to "".
func (q Query) Encode() string {
	var parts []string
	if q.Search != "" {
		parts = append(parts, "search="+url.QueryEscape(q.Search))
	}
	if len(q.Filters) > 0 {
		escaped := make([]string, len(q.Filters))
		for i, f := range q.Filters {
			escaped[i] = url.QueryEscape(f)
		}
		parts = append(parts, "filters="+strings.Join(escaped, ","))
	}
	return strings.Join(parts, "&")
}

// ParseQuery restores a Query from raw, with or without a leading "?".
// Unknown parameters are ignored and malformed pairs are skipped.
func ParseQuery(raw string) Query {
	values, _ := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	q := Query{Search: values.Get("search")}
	if f := values.Get("filters"); f != "" {
		q.Filters = normalizeFilters(strings.Split(f, ","))
	}
	return q
}

// Match reports whether p satisfies q: the title contains the term, ignoring
// case, and the category is one of the filters when any are set.
func (q Query) Match(p shop.Product) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.Search)) {
		return false
	}
	if len(q.Filters) > 0 && !slices.Contains(q.Filters, p.Category()) {
		return false
	}
	return true
}

// Filter returns the products matching q in catalog order.
func Filter(products []shop.Product, q Query) []shop.Product {
	out := make([]shop.Product, 0, len(products))
	for _, p := range products {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func normalizeFilters(in []string) []string {
	var out []string
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
