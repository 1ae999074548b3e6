package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"petradar/internal/domain/matching"
	"petradar/internal/platform/httpclient"
	"petradar/internal/ports/geocode"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "petradar/1.0"
)

// Geocoder resuelve texto libre a coordenadas contra Nominatim (OSM).
type Geocoder struct {
	client *httpclient.Client
}

func New(baseURL string, timeout time.Duration) (*Geocoder, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Geocoder{client: client}, nil
}

// searchResult es el subset que usamos de la respuesta de /search.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *Geocoder) Geocode(ctx context.Context, address string) (matching.Point, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []searchResult
	err := g.client.DoJSON(ctx, "GET", "/search?"+q.Encode(), map[string]string{
		// Nominatim exige identificar la aplicación.
		"User-Agent": userAgent,
	}, nil, &results)
	if err != nil {
		return matching.Point{}, fmt.Errorf("%w: %v", geocode.ErrGeocodingFailed, err)
	}
	if len(results) == 0 {
		return matching.Point{}, geocode.ErrGeocodingFailed
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lon, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return matching.Point{}, geocode.ErrGeocodingFailed
	}

	return matching.Point{Lat: lat, Lon: lon}, nil
}
