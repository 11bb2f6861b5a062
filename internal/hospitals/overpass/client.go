// Package overpass queries an Overpass-compatible spatial database for
// hospital-tagged features around a coordinate.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medicare_backend/internal/hospitals/geo"
	"medicare_backend/platform/apperr"
	"medicare_backend/platform/config"
	"medicare_backend/platform/logger"
)

// Variant names for the three spatial geometry kinds. Element IDs are only
// unique within a variant, so dedup keys must include it.
const (
	VariantNode     = "node"
	VariantWay      = "way"
	VariantRelation = "relation"
)

// Center is the precomputed centroid the service returns for non-point
// geometries when asked with "out center".
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one raw spatial feature. Nodes carry Lat/Lon directly; ways and
// relations never do and must use Center. Absent fields stay nil so the
// ranking stage can tell "missing" from zero.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Key returns the variant-namespaced identifier, e.g. "way/12345".
func (e Element) Key() string {
	return fmt.Sprintf("%s/%d", e.Type, e.ID)
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// Client issues Overpass QL queries over HTTP POST.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        *logger.Logger
}

// NewClient creates an Overpass client.
func NewClient(cfg config.OverpassConfig, log *logger.Logger) *Client {
	timeout := cfg.GetGeoTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.GetOverpassBaseURL(),
		userAgent:  cfg.GetGeoUserAgent(),
		log:        log,
	}
}

// FetchHospitals returns all features tagged amenity=hospital within radiusKm
// of the origin. A successful response with zero elements returns an empty
// slice, not an error: "no hospitals found" is a valid outcome.
func (c *Client) FetchHospitals(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]Element, error) {
	if radiusKm <= 0 {
		return nil, apperr.Validation("search radius must be positive")
	}

	query := buildHospitalQuery(origin, radiusKm)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to build spatial query request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("overpass", "fetch hospitals", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "The hospital database could not be reached. Please try again.", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("overpass upstream error", "status", resp.StatusCode)
		return nil, apperr.Unavailable(fmt.Sprintf("The hospital database is unavailable (status %d). Please try again.", resp.StatusCode))
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.UpstreamError("overpass", "decode", err)
		return nil, apperr.Wrap(apperr.KindUpstream, "The hospital database returned an unreadable response.", err)
	}

	return payload.Elements, nil
}

// buildHospitalQuery renders the Overpass QL query: all three geometry kinds
// tagged amenity=hospital within the radius, with centroid computation for
// non-point geometries.
func buildHospitalQuery(origin geo.Coordinate, radiusKm float64) string {
	radiusMeters := int(radiusKm * 1000)
	around := fmt.Sprintf("(around:%d,%f,%f)", radiusMeters, origin.Lat, origin.Lon)
	return fmt.Sprintf(`[out:json];
(
  node["amenity"="hospital"]%s;
  way["amenity"="hospital"]%s;
  relation["amenity"="hospital"]%s;
);
out center;`, around, around, around)
}
