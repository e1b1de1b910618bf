package index

import (
	"slices"
	"strings"
	"unicode"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/i18n"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

const (
	// DigitsCategory groups streets whose name starts with a digit.
	DigitsCategory = "0-9"
	// DefaultPOICategory is used for points without a category property.
	DefaultPOICategory = "Other"
)

// Locator turns the map endpoints of an item into a printable location.
// grid.Descriptor and SheetLocator implement it.
type Locator interface {
	LocationRange(points ...geo.Point) string
}

// Builder collects features into sorted categories.
type Builder struct {
	locale  i18n.Locale
	locator Locator

	streets map[string]map[string]orb.Bound
	pois    map[string]map[string]orb.Bound
	skipped int
}

// NewBuilder returns a builder sorting in the order of locale. A nil
// locator leaves locations empty.
func NewBuilder(locale i18n.Locale, locator Locator) *Builder {
	return &Builder{
		locale:  locale,
		locator: locator,
		streets: map[string]map[string]orb.Bound{},
		pois:    map[string]map[string]orb.Bound{},
	}
}

// AddCollection adds every named feature of fc.
func (b *Builder) AddCollection(fc *geojson.FeatureCollection) {
	for _, f := range fc.Features {
		b.AddFeature(f)
	}
}

// AddFeature adds one feature. Line geometries are streets, filed under
// their initial; everything else is a point of interest filed under its
// "category" property. Features with the same label in the same category
// are merged.
func (b *Builder) AddFeature(f *geojson.Feature) {
	name := f.Properties.MustString("name", "")
	if name == "" || f.Geometry == nil {
		b.skipped++
		return
	}
	bound := f.Geometry.Bound()

	switch f.Geometry.(type) {
	case orb.LineString, orb.MultiLineString:
		add(b.streets, b.initial(name), name, bound)
	default:
		category := f.Properties.MustString("category", DefaultPOICategory)
		add(b.pois, category, name, bound)
	}
}

func add(groups map[string]map[string]orb.Bound, category, label string, bound orb.Bound) {
	items, ok := groups[category]
	if !ok {
		items = map[string]orb.Bound{}
		groups[category] = items
	}

	if prev, ok := items[label]; ok {
		bound = prev.Union(bound)
	}
	items[label] = bound
}

// initial returns the street category of a label: its first letter in
// upper case, or DigitsCategory.
func (b *Builder) initial(label string) string {
	for _, r := range label {
		if unicode.IsDigit(r) {
			return DigitsCategory
		}
		if unicode.IsLetter(r) {
			return b.locale.Upper(string(r))
		}
	}

	return DigitsCategory
}

// Categories returns the street categories followed by the point of
// interest categories, each sorted by name, with items sorted by label.
func (b *Builder) Categories() []Category {
	out := append(b.sorted(b.streets, true), b.sorted(b.pois, false)...)

	log.Debug().
		Int("categories", len(out)).
		Int("items", CountItems(out)).
		Int("skipped", b.skipped).
		Str("locale", b.locale.String()).
		Msg("Index built")

	return out
}

func (b *Builder) sorted(groups map[string]map[string]orb.Bound, street bool) []Category {
	collator := b.locale.NewCollator()

	out := make([]Category, 0, len(groups))
	for name, items := range groups {
		c := Category{Name: name, Street: street, Items: make([]Item, 0, len(items))}
		for label, bound := range items {
			c.Items = append(c.Items, b.item(label, bound))
		}
		slices.SortStableFunc(c.Items, func(x, y Item) int {
			if n := collator.CompareString(x.Label, y.Label); n != 0 {
				return n
			}
			// collation ties still need a fixed order, maps are unordered
			return strings.Compare(x.Label, y.Label)
		})
		out = append(out, c)
	}

	slices.SortStableFunc(out, func(x, y Category) int {
		// digits sort after the letters
		if (x.Name == DigitsCategory) != (y.Name == DigitsCategory) {
			if x.Name == DigitsCategory {
				return 1
			}
			return -1
		}
		if n := collator.CompareString(x.Name, y.Name); n != 0 {
			return n
		}
		return strings.Compare(x.Name, y.Name)
	})

	return out
}

func (b *Builder) item(label string, bound orb.Bound) Item {
	endpoints := []geo.Point{geo.PointFromOrb(bound.Min)}
	if bound.Min != bound.Max {
		endpoints = []geo.Point{
			{Lat: bound.Max.Lat(), Lon: bound.Min.Lon()},
			{Lat: bound.Min.Lat(), Lon: bound.Max.Lon()},
		}
	}

	item := Item{Label: label, Endpoints: endpoints}
	if b.locator != nil {
		item.Location = b.locator.LocationRange(endpoints...)
	}

	return item
}
