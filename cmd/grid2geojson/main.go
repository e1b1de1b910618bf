package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/grid"
	"github.com/woozymasta/mapbook/internal/i18n"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	BBox       string  `short:"b" long:"bbox" description:"Area as \"lat,long lat,long\" or a WKT polygon" required:"true"`
	Output     string  `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format     string  `short:"f" long:"format" description:"Output format" choice:"geojson" choice:"json" choice:"yaml" default:"geojson"`
	Labels     string  `short:"l" long:"labels" description:"Label scheme" choice:"alpha-numeric" choice:"numeric-alpha" default:"alpha-numeric"`
	SquareSize float64 `short:"s" long:"square-size" description:"Square size in meters" default:"500"`
	Adaptive   bool    `short:"a" long:"adaptive" description:"Pick the square size from the area"`
	Locale     string  `short:"L" long:"locale" description:"Locale, right to left locales reverse column labels" default:"en"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	bbox, err := parseBBox(opts.BBox)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing bbox: %v\n", err)
		os.Exit(1)
	}

	locale, err := i18n.Parse(opts.Locale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing locale: %v\n", err)
		os.Exit(1)
	}

	g, err := grid.New(bbox, grid.Options{
		Scheme:     grid.LabelScheme(opts.Labels),
		SquareSize: opts.SquareSize,
		Adaptive:   opts.Adaptive,
		RTL:        locale.IsRTL(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing grid: %v\n", err)
		os.Exit(1)
	}

	// marshal
	var outputData []byte
	switch opts.Format {
	case "yaml":
		outputData, err = yaml.Marshal(g.Summary())
	case "json":
		outputData, err = json.MarshalIndent(g.Summary(), "", "  ")
	default:
		var buf bytes.Buffer
		sink := grid.NewGeoJSONSink(&buf, bbox.Expanded(0.001, 0.001))
		if err = sink.AddSquareLabels(g); err == nil {
			err = g.Emit(sink)
		}
		outputData = buf.Bytes()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully wrote %dx%d grid to %s (format: %s)\n", g.Columns(), g.Rows(), opts.Output, opts.Format)
	} else {
		fmt.Print(string(outputData))
	}
}

// parseBBox accepts a WKT polygon or two "lat,long" corners separated by
// a space.
func parseBBox(s string) (geo.BoundingBox, error) {
	if bbox, err := geo.ParseWKT(s); err == nil {
		return bbox, nil
	}

	var first, second string
	if _, err := fmt.Sscan(s, &first, &second); err != nil {
		return geo.BoundingBox{}, fmt.Errorf("expected a WKT polygon or two lat,long corners: %w", err)
	}

	return geo.ParseLatLonPair(first, second)
}
