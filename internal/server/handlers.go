// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/mapbook/internal/geo"
	"github.com/woozymasta/mapbook/internal/sheets"

	"gopkg.in/yaml.v3"
)

// bboxInfo is the answer of /api/bbox.
type bboxInfo struct {
	BBox    geo.BoundingBox `json:"bbox"`
	WKT     string          `json:"wkt"`
	DMS     string          `json:"dms"`
	Center  geo.Point       `json:"center"`
	HeightM float64         `json:"height_m"`
	WidthM  float64         `json:"width_m"`
}

// HandleBBox serves the atlas area in every notation.
func (s *ServerContext) HandleBBox(w http.ResponseWriter, r *http.Request) {
	bbox := s.Atlas.Project().BBox
	height, width := bbox.SphericSizes()

	writeJSON(w, bboxInfo{
		BBox:    bbox,
		WKT:     bbox.WKT(),
		DMS:     bbox.DMSString(),
		Center:  bbox.Center(),
		HeightM: height,
		WidthM:  width,
	})
}

// HandleGrid serves the grid as GeoJSON, or its summary with
// ?format=json or ?format=yaml.
func (s *ServerContext) HandleGrid(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "", "geojson":
		serveBytes(w, r, s.GridJSON, "application/geo+json")
	case "json":
		writeJSON(w, s.Atlas.Grid().Summary())
	case "yaml":
		data, err := yaml.Marshal(s.Atlas.Grid().Summary())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		serveBytes(w, r, data, "application/yaml")
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
	}
}

// sheetsInfo is the answer of /api/sheets.
type sheetsInfo struct {
	Plan  *sheets.Plan `json:"plan"`
	Scale float64      `json:"scale"`
	Zoom  int          `json:"zoom"`
}

// HandleSheets serves the map page plan.
func (s *ServerContext) HandleSheets(w http.ResponseWriter, r *http.Request) {
	p := s.Atlas.Project()
	writeJSON(w, sheetsInfo{Plan: s.Atlas.Plan(), Scale: p.Sheets.Scale, Zoom: p.Sheets.Zoom})
}

// HandleIndex serves the index as JSON on /api/index and its pages on
// /api/index/{page}.svg.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/index"), "/")
	if rest == "" {
		writeJSON(w, s.Index)
		return
	}

	number, ok := strings.CutSuffix(rest, ".svg")
	if !ok {
		http.NotFound(w, r)
		return
	}
	page, err := strconv.Atoi(number)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	data, ok := s.IndexPages[page]
	if !ok {
		http.NotFound(w, r)
		return
	}

	serveBytes(w, r, data, "image/svg+xml")
}

// HandleHome serves the landing page.
func (s *ServerContext) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	serveBytes(w, r, s.IndexHTML, "text/html; charset=utf-8")
}

// serveBytes writes a generated document with a content based ETag.
func serveBytes(w http.ResponseWriter, r *http.Request, data []byte, contentType string) {
	h := fnv.New64a()
	_, _ = h.Write(data)
	etag := fmt.Sprintf(`"%x-%x"`, len(data), h.Sum64())

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

// Routes returns the API mux wrapped in the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bbox", s.HandleBBox)
	mux.HandleFunc("/api/grid", s.HandleGrid)
	mux.HandleFunc("/api/sheets", s.HandleSheets)
	mux.HandleFunc("/api/index", s.HandleIndex)
	mux.HandleFunc("/api/index/", s.HandleIndex)
	mux.HandleFunc("/", s.HandleHome)

	return RequestLogger(mux)
}
