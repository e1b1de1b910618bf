package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/woozymasta/mapbook/internal/geo"

	"github.com/chai2010/webp"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"
)

// Options configure a Fetcher.
type Options struct {
	// URL is a template with {z}, {x}, {y} or {tms_y} placeholders.
	URL string `yaml:"url" json:"url"`

	Concurrency int     `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
	Rate        float64 `yaml:"rate,omitempty" json:"rate,omitempty"`
	Burst       int     `yaml:"burst,omitempty" json:"burst,omitempty"`
	MemoryTiles int     `yaml:"memory_tiles,omitempty" json:"memory_tiles,omitempty"`

	// CacheDir keeps downloaded tiles as WebP files; empty disables it.
	CacheDir string `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
	// Force downloads tiles even when they are cached on disk.
	Force bool `yaml:"-" json:"-"`

	UserAgent string `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// Fetcher downloads tiles with bounded concurrency and request rate, and
// keeps them in memory and on disk. It is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	memory  *lru.Cache[Coordinate, image.Image]
}

// NewFetcher validates opts and fills in defaults.
func NewFetcher(client *http.Client, opts Options) (*Fetcher, error) {
	if !IsTemplate(opts.URL) {
		return nil, fmt.Errorf("tile url %q has no {z}/{x}/{y} placeholders", opts.URL)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.MemoryTiles <= 0 {
		opts.MemoryTiles = 256
	}
	if opts.Burst <= 0 {
		opts.Burst = opts.Concurrency
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}

	memory, err := lru.New[Coordinate, image.Image](opts.MemoryTiles)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(limit, opts.Burst),
		memory:  memory,
	}, nil
}

// Tile returns one tile from memory, the disk cache or the server.
func (f *Fetcher) Tile(ctx context.Context, c Coordinate) (image.Image, error) {
	if img, ok := f.memory.Get(c); ok {
		return img, nil
	}

	path := f.cachePath(c)
	if path != "" && !f.opts.Force {
		if img, err := readTile(path); err == nil {
			f.memory.Add(c, img)
			return img, nil
		}
	}

	img, err := f.download(ctx, c)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := writeTile(path, img); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to cache tile")
		}
	}
	f.memory.Add(c, img)

	return img, nil
}

func (f *Fetcher) cachePath(c Coordinate) string {
	if f.opts.CacheDir == "" {
		return ""
	}

	return filepath.Join(
		f.opts.CacheDir,
		strconv.Itoa(c.Z),
		strconv.Itoa(c.X),
		strconv.Itoa(c.Y)+".webp",
	)
}

func (f *Fetcher) download(ctx context.Context, c Coordinate) (image.Image, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := BuildURL(f.opts.URL, c)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", c, ErrNoTile)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status code %d", c, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", c, err)
	}

	// empty 1px tiles are what many servers return out of bounds
	if img.Bounds().Dx() <= 1 {
		return nil, fmt.Errorf("%s: %w", c, ErrNoTile)
	}

	log.Trace().Str("url", url).Msg("Tile downloaded")
	return img, nil
}

func readTile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	return img, err
}

func writeTile(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	return webp.Encode(out, img, &webp.Options{Lossless: false, Quality: 80})
}

type result struct {
	coord Coordinate
	img   image.Image
}

// Fetch downloads coords with a pool of workers. Tiles that fail are
// logged and left out of the result.
func (f *Fetcher) Fetch(ctx context.Context, coords []Coordinate) map[Coordinate]image.Image {
	jobs := make(chan Coordinate, len(coords))
	results := make(chan result, len(coords))

	for _, c := range coords {
		jobs <- c
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < min(f.opts.Concurrency, len(coords)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				img, err := f.Tile(ctx, c)
				if err != nil {
					ev := log.Debug()
					if errors.Is(err, ErrNoTile) {
						ev = log.Trace()
					}
					ev.Err(err).Str("url", BuildURL(f.opts.URL, c)).Msg("Failed to fetch tile")
					continue
				}
				results <- result{coord: c, img: img}
			}
		}()
	}
	wg.Wait()
	close(results)

	out := make(map[Coordinate]image.Image, len(coords))
	for res := range results {
		out[res.coord] = res.img
	}

	return out
}

// Compose renders bbox at zoom from tiles, sized as
// geo.BoundingBox.PixelSizeForZoom. Missing tiles are left white.
func (f *Fetcher) Compose(ctx context.Context, bbox geo.BoundingBox, zoom int) (*image.RGBA, error) {
	w := newWindow(bbox, zoom)
	coords := w.tiles()

	log.Debug().
		Str("bbox", bbox.String()).
		Int("zoom", zoom).
		Int("tiles", len(coords)).
		Msg("Composing sheet background")

	fetched := f.Fetch(ctx, coords)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(fetched) < len(coords) {
		log.Warn().
			Int("missing", len(coords)-len(fetched)).
			Int("zoom", zoom).
			Msg("Sheet background is incomplete")
	}

	width, height := w.size()
	mosaic := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(mosaic, mosaic.Bounds(), image.White, image.Point{}, draw.Src)

	for c, img := range fetched {
		at := image.Pt(c.X*geo.TileSize-w.originX, c.Y*geo.TileSize-w.origY)
		dst := image.Rectangle{Min: at, Max: at.Add(image.Pt(geo.TileSize, geo.TileSize))}
		xdraw.CatmullRom.Scale(mosaic, dst, img, img.Bounds(), draw.Over, nil)
	}

	// crop the fractional pixels and scale to the sheet size
	src := image.Rect(0, 0, width, height).Intersect(image.Rect(
		int(w.minX)-w.originX, int(w.minY)-w.origY,
		int(w.maxX)-w.originX, int(w.maxY)-w.origY,
	))
	outHeight, outWidth := bbox.PixelSizeForZoom(zoom)
	out := image.NewRGBA(image.Rect(0, 0, outWidth, outHeight))
	xdraw.CatmullRom.Scale(out, out.Bounds(), mosaic, src, draw.Src, nil)

	return out, nil
}
