package server

import (
	"bytes"
	"fmt"

	"github.com/woozymasta/mapbook/internal/atlas"
	"github.com/woozymasta/mapbook/internal/index"
	"github.com/woozymasta/mapbook/internal/layout"

	"github.com/rs/zerolog/log"
)

// ServerContext holds the rendered atlas served by the handlers. Every
// document is built once, so handlers only read it.
type ServerContext struct {
	Atlas *atlas.Atlas

	IndexHTML  []byte
	GridJSON   []byte
	IndexPages map[int][]byte
	Index      []index.Category
	Layout     *layout.Result
}

// NewServerContext renders the grid and the SVG index pages of a.
func NewServerContext(a *atlas.Atlas) (*ServerContext, error) {
	s := &ServerContext{Atlas: a, IndexPages: map[int][]byte{}}

	var grid bytes.Buffer
	if err := a.WriteGrid(&grid); err != nil {
		return nil, fmt.Errorf("render grid: %w", err)
	}
	s.GridJSON = grid.Bytes()

	res, err := a.RenderIndexSVG(func(page int, data []byte) error {
		s.IndexPages[page] = bytes.Clone(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Layout = res
	s.Index = res.Apply(a.Categories())

	s.IndexHTML, err = homePage(a, res)
	if err != nil {
		return nil, fmt.Errorf("render home page: %w", err)
	}

	log.Info().
		Int("sheets", a.Plan().Len()).
		Int("index_pages", len(s.IndexPages)).
		Int("grid_bytes", len(s.GridJSON)).
		Msg("Server context initialized successfully")

	return s, nil
}
