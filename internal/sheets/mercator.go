package sheets

import (
	"slices"

	"github.com/woozymasta/mapbook/internal/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

func toMercator(p geo.Point) orb.Point {
	return project.WGS84.ToMercator(p.Orb())
}

func sortByPage(s []*Sheet) {
	slices.SortFunc(s, func(a, b *Sheet) int {
		return a.Page - b.Page
	})
}
