package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/woozymasta/mapbook/internal/atlas"
	"github.com/woozymasta/mapbook/internal/config"
	"github.com/woozymasta/mapbook/internal/logger"
	"github.com/woozymasta/mapbook/internal/render"
	"github.com/woozymasta/mapbook/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"     env:"CONFIG_FILE" description:"Path to atlas project file" default:"atlas.yaml"`
	Output     string `short:"o" long:"output"     env:"OUTPUT_DIR"  description:"Output directory, overrides the project"`
	SheetsOnly bool   `short:"s" long:"sheets-only" description:"Render map sheets only"`
	IndexOnly  bool   `short:"i" long:"index-only"  description:"Render the index only"`
	NoTiles    bool   `short:"n" long:"no-tiles"    description:"Render sheets without tile background"`
	Force      bool   `short:"f" long:"force"       description:"Download tiles even when cached"`
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

	opts.Logger.Setup()

	project, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load project")
	}
	if opts.Output != "" {
		project.Output = opts.Output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 15 * time.Second,
	}

	a, err := atlas.New(ctx, client, project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare atlas")
	}

	renderSheets := !opts.IndexOnly || opts.SheetsOnly
	renderIndex := !opts.SheetsOnly || opts.IndexOnly

	if err := writeGrid(a, project.Output); err != nil {
		log.Fatal().Err(err).Msg("Failed to write grid")
	}

	if renderSheets {
		var fetcher *tiles.Fetcher
		if project.Tiles != nil && !opts.NoTiles {
			tileOpts := *project.Tiles
			tileOpts.Force = opts.Force
			fetcher, err = tiles.NewFetcher(client, tileOpts)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to set up tile fetcher")
			}
		}

		write := render.WebPPages(filepath.Join(project.Output, "sheets"), "sheet-%03d.webp")
		if err := a.RenderSheets(ctx, fetcher, write); err != nil {
			log.Fatal().Err(err).Msg("Failed to render map sheets")
		}
	}

	if renderIndex {
		if err := writeIndex(a, project); err != nil {
			log.Fatal().Err(err).Msg("Failed to render index")
		}
	}

	log.Info().Str("output", project.Output).Msg("Atlas finished successfully")
}

func writeGrid(a *atlas.Atlas, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(dir, "grid.geojson")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	if err := a.WriteGrid(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Grid written")
	return nil
}

func writeIndex(a *atlas.Atlas, project *config.Project) error {
	dir := filepath.Join(project.Output, "index")

	switch project.Index.Format {
	case config.FormatSVG:
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		res, err := a.RenderIndexSVG(func(page int, data []byte) error {
			return os.WriteFile(filepath.Join(dir, fmt.Sprintf("index-%03d.svg", page)), data, 0644)
		})
		if err != nil {
			return err
		}
		logIndex(res.Pages, res.FirstPage, res.Overflows)

	default:
		res, err := a.RenderIndexRaster(render.WebPPages(dir, "index-%03d.webp"))
		if err != nil {
			return err
		}
		logIndex(res.Pages, res.FirstPage, res.Overflows)
	}

	return nil
}

func logIndex(pages, first, overflows int) {
	ev := log.Info()
	if overflows > 0 {
		ev = log.Warn().Int("overflows", overflows)
	}
	ev.Int("pages", pages).Int("first_page", first).Msg("Index rendered")
}
