// Package index builds the categorized street and point of interest index
// of an atlas.
package index

import (
	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"
)

// Category is a named group of items, such as all streets starting with
// "B" or all schools. Item order is the display order.
type Category struct {
	Name   string `json:"name" yaml:"name"`
	Items  []Item `json:"items" yaml:"items"`
	Street bool   `json:"street,omitempty" yaml:"street,omitempty"`
}

// Item is one index entry: a label and where to find it.
type Item struct {
	Label    string `json:"label" yaml:"label"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Page     int    `json:"page,omitempty" yaml:"page,omitempty"`

	// Endpoints locate the feature on the map, usually the corners of
	// its bounds or a single point.
	Endpoints []geo.Point `json:"-" yaml:"-"`
}

// LocationText returns the location to print, or grid.UnknownLocation.
func (i Item) LocationText() string {
	if i.Location == "" {
		return grid.UnknownLocation
	}

	return i.Location
}

// CountItems returns the number of items of all categories.
func CountItems(categories []Category) int {
	n := 0
	for _, c := range categories {
		n += len(c.Items)
	}

	return n
}

// Clone returns a deep copy of categories.
func Clone(categories []Category) []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = c
		out[i].Items = make([]Item, len(c.Items))
		for j, item := range c.Items {
			out[i].Items[j] = item
			if item.Endpoints != nil {
				out[i].Items[j].Endpoints = append([]geo.Point(nil), item.Endpoints...)
			}
		}
	}

	return out
}
