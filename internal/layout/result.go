package layout

import "github.com/woozymasta/mapbook/internal/index"

// Placement is where a header or an item was drawn.
type Placement struct {
	Page   int     `json:"page"`
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

// Result is the outcome of one layout pass. Headers has one entry per
// category and Items one entry per item, indexed like the input.
type Result struct {
	Headers []Placement   `json:"headers"`
	Items   [][]Placement `json:"items"`

	Pages     int `json:"pages"`
	FirstPage int `json:"first_page"`
	LastPage  int `json:"last_page"`

	Columns          int     `json:"columns"`
	ColumnWidth      float64 `json:"column_width"`
	MaxLabelWidth    float64 `json:"max_label_width"`
	MaxLocationWidth float64 `json:"max_location_width"`

	// Overflows counts lines taller than an empty column.
	Overflows int `json:"overflows"`
}

// PageOf returns the page number of an item.
func (r *Result) PageOf(category, item int) int {
	return r.Items[category][item].Page
}

// Placed returns the number of items placed.
func (r *Result) Placed() int {
	n := 0
	for _, items := range r.Items {
		n += len(items)
	}

	return n
}

// Apply returns a copy of categories with the page numbers of this result
// filled in. The input is left untouched.
func (r *Result) Apply(categories []index.Category) []index.Category {
	out := index.Clone(categories)
	for ci := range out {
		for ii := range out[ci].Items {
			out[ci].Items[ii].Page = r.Items[ci][ii].Page
		}
	}

	return out
}
