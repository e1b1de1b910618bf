package index

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// LoadFeatures reads a GeoJSON FeatureCollection from a local file or an
// http(s) URL.
func LoadFeatures(ctx context.Context, client *http.Client, source string) (*geojson.FeatureCollection, error) {
	var data []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		log.Info().Str("url", source).Msg("Downloading index features")
		data, err = download(ctx, client, source)
	} else {
		log.Debug().Str("path", source).Msg("Reading index features")
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("load features %s: %w", source, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode features %s: %w", source, err)
	}

	log.Debug().
		Str("source", source).
		Int("features", len(fc.Features)).
		Msg("Index features loaded")

	return fc, nil
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
