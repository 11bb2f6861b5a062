// Package geocode resolves free-text locations into coordinates using the
// Nominatim search API, and provides the lower-confidence free-text healthcare
// search used as a last-resort fallback.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"medicare_backend/internal/hospitals/geo"
	"medicare_backend/platform/apperr"
	"medicare_backend/platform/config"
	"medicare_backend/platform/logger"
)

// fallbackSearchTerms are the free-text queries of the heuristic healthcare
// search. Tag-based Overpass filtering remains authoritative; these exist only
// for areas where Overpass has no answer at all.
var fallbackSearchTerms = []string{"hospital", "clinic", "medical center", "health center"}

// Client talks to a Nominatim-compatible geocoding service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	// Nominatim usage policy allows at most one request per second.
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewClient creates a geocoding client. The User-Agent identifies this
// application as required by the Nominatim usage policy.
func NewClient(cfg config.GeocodingConfig, log *logger.Logger) *Client {
	timeout := cfg.GetGeoTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.GetNominatimBaseURL(), "/"),
		userAgent:  cfg.GetGeoUserAgent(),
		limiter:    rate.NewLimiter(rate.Every(1100*time.Millisecond), 1),
		log:        log,
	}
}

// Search resolves a free-text location into a single coordinate. One attempt,
// no retries; the caller decides whether to retry the whole search.
func (c *Client) Search(ctx context.Context, locationText string) (Result, error) {
	locationText = strings.TrimSpace(locationText)
	if locationText == "" {
		return Result{}, apperr.Validation("location must not be empty")
	}

	params := url.Values{}
	params.Add("q", locationText)
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("addressdetails", "1")

	candidates, err := c.query(ctx, params)
	if err != nil {
		return Result{}, err
	}

	if len(candidates) == 0 {
		return Result{}, apperr.NotFound("Location not found. Please try a different location name.")
	}

	coord, err := parseCoordinate(candidates[0].Lat, candidates[0].Lon)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindUpstream, "geocoding service returned invalid coordinates", err)
	}

	return Result{Coordinate: coord, DisplayName: candidates[0].DisplayName}, nil
}

// SearchHealthcare runs the free-text fallback: each term is queried inside a
// viewbox around the origin, paced to respect the service's rate limit.
// Individual term failures are logged and skipped; the method only fails when
// the context is cancelled.
func (c *Client) SearchHealthcare(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]Place, error) {
	box := geo.ViewboxAround(origin, radiusKm)
	seen := make(map[int64]bool)
	var places []Place

	for _, term := range fallbackSearchTerms {
		params := url.Values{}
		params.Add("q", term)
		params.Add("format", "json")
		params.Add("bounded", "1")
		params.Add("viewbox", fmt.Sprintf("%f,%f,%f,%f", box.MinLon, box.MaxLat, box.MaxLon, box.MinLat))
		params.Add("limit", "50")
		params.Add("addressdetails", "1")
		params.Add("extratags", "1")

		candidates, err := c.query(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperr.Wrap(apperr.KindUnavailable, "healthcare search cancelled", ctx.Err())
			}
			c.log.UpstreamError("nominatim", "healthcare search: "+term, err)
			continue
		}

		for _, candidate := range candidates {
			if seen[candidate.PlaceID] {
				continue
			}
			place, ok := buildPlace(candidate)
			if !ok {
				continue
			}
			seen[candidate.PlaceID] = true
			places = append(places, place)
		}
	}

	return places, nil
}

func (c *Client) query(ctx context.Context, params url.Values) ([]nominatimResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "geocoding request cancelled", err)
	}

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to build geocoding request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("nominatim", "search", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "The geocoding service could not be reached. Please try again.", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("nominatim upstream error", "status", resp.StatusCode)
		return nil, apperr.Unavailable(fmt.Sprintf("The geocoding service is unavailable (status %d). Please try again.", resp.StatusCode))
	}

	var candidates []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		c.log.UpstreamError("nominatim", "decode", err)
		return nil, apperr.Wrap(apperr.KindUpstream, "geocoding service returned an unreadable response", err)
	}

	return candidates, nil
}

// buildPlace keeps only candidates that look like healthcare facilities. This
// substring matching is the fragile part of the fallback; results derived from
// it are labelled low-confidence downstream.
func buildPlace(raw nominatimResponse) (Place, bool) {
	coord, err := parseCoordinate(raw.Lat, raw.Lon)
	if err != nil {
		return Place{}, false
	}

	lowered := strings.ToLower(raw.DisplayName)
	isHealthcare := strings.Contains(raw.Type, "hospital") ||
		strings.Contains(raw.Type, "clinic") ||
		strings.Contains(raw.Category, "healthcare") ||
		strings.Contains(lowered, "hospital") ||
		strings.Contains(lowered, "clinic") ||
		strings.Contains(lowered, "medical")
	if !isHealthcare {
		return Place{}, false
	}

	name := raw.DisplayName
	if idx := strings.Index(name, ","); idx > 0 {
		name = name[:idx]
	}
	if name == "" {
		name = "Hospital"
	}

	return Place{
		PlaceID:     raw.PlaceID,
		Name:        name,
		DisplayName: raw.DisplayName,
		Coordinate:  coord,
		Address:     raw.DisplayName,
		Phone:       raw.ExtraTags["phone"],
		Website:     raw.ExtraTags["website"],
	}, true
}

func parseCoordinate(latText, lonText string) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", latText, err)
	}
	lon, err := strconv.ParseFloat(lonText, 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", lonText, err)
	}

	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if math.IsNaN(lat) || math.IsNaN(lon) || !coord.Valid() {
		return geo.Coordinate{}, fmt.Errorf("coordinates out of range: (%s, %s)", latText, lonText)
	}
	return coord, nil
}
