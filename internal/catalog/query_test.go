package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/five82/shopfront/internal/shop"
)

func TestQuery_Encode(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"empty", Query{}, ""},
		{"search only", Query{Search: "oak table"}, "search=oak+table"},
		{"filters only", Query{Filters: []string{"decor", "lighting"}}, "filters=decor,lighting"},
		{"both", Query{Search: "lamp", Filters: []string{"lighting"}}, "search=lamp&filters=lighting"},
		{"escapes", Query{Search: "a&b=c"}, "search=a%26b%3Dc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.Encode())
		})
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want Query
	}{
		{"", Query{}},
		{"?search=lamp", Query{Search: "lamp"}},
		{"search=oak+table&filters=Lighting,decor,,decor", Query{Search: "oak table", Filters: []string{"decor", "lighting"}}},
		{"filters=decor%2Clighting&utm=x", Query{Filters: []string{"decor", "lighting"}}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuery(tt.raw))
		})
	}
}

func TestQuery_RoundTrip(t *testing.T) {
	q := Query{Search: "Linen & wool", Filters: []string{"decor", "textiles"}}
	assert.Equal(t, q, ParseQuery(q.Encode()))
}

func TestFilter_TextAndCategories(t *testing.T) {
	products := []shop.Product{
		{ID: "1", Title: "Oak Table", Type: "Furniture"},
		{ID: "2", Title: "Table Lamp", Type: "Lighting"},
		{ID: "3", Title: "Wool Rug", Type: "Textiles"},
	}

	ids := func(ps []shop.Product) []shop.ID {
		var out []shop.ID
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []shop.ID{"1", "2", "3"}, ids(Filter(products, Query{})))
	assert.Equal(t, []shop.ID{"1", "2"}, ids(Filter(products, Query{Search: "TABLE"})))
	assert.Equal(t, []shop.ID{"2"}, ids(Filter(products, Query{Search: "table", Filters: []string{"lighting"}})))
	assert.Equal(t, []shop.ID{"2", "3"}, ids(Filter(products, Query{Filters: []string{"lighting", "textiles"}})))
	assert.Empty(t, Filter(products, Query{Search: "sofa"}))
}
