// Package service orchestrates a hospital search end to end: resolve the
// location text to a coordinate, fetch tagged hospitals around it, widen the
// radius when the first pass is empty, and publish one consistent view of
// the outcome.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"medicare_backend/internal/hospitals/geo"
	"medicare_backend/internal/hospitals/geocode"
	"medicare_backend/internal/hospitals/overpass"
	"medicare_backend/internal/hospitals/rank"
	"medicare_backend/internal/hospitals/session"
	"medicare_backend/platform/apperr"
	"medicare_backend/platform/config"
	"medicare_backend/platform/logger"
)

// Geocoder resolves free location text to a single coordinate.
type Geocoder interface {
	Search(ctx context.Context, locationText string) (geocode.Result, error)
}

// TextSearcher finds healthcare candidates by name near a coordinate. It is
// the heuristic last resort behind the structured spatial query.
type TextSearcher interface {
	SearchHealthcare(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]geocode.Place, error)
}

// Fetcher retrieves hospital-tagged features within a radius.
type Fetcher interface {
	FetchHospitals(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]overpass.Element, error)
}

// Service runs hospital searches and owns the published result session.
type Service struct {
	geocoder     Geocoder
	fetcher      Fetcher
	textSearcher TextSearcher
	cfg          config.HospitalSearchConfig
	log          *logger.Logger
	session      *session.Session
	group        singleflight.Group
}

func NewService(geocoder Geocoder, fetcher Fetcher, textSearcher TextSearcher, cfg config.HospitalSearchConfig, log *logger.Logger) *Service {
	return &Service{
		geocoder:     geocoder,
		fetcher:      fetcher,
		textSearcher: textSearcher,
		cfg:          cfg,
		log:          log,
		session:      session.New(),
	}
}

// Search runs the full pipeline for locationText and publishes the result.
// The returned view is always this search's own outcome; publication into the
// shared session can still lose to a newer search that finished first.
func (s *Service) Search(ctx context.Context, locationText string) (session.SearchView, error) {
	query := strings.TrimSpace(locationText)
	if query == "" {
		return session.SearchView{}, apperr.Validation("Location is required")
	}

	seq := s.session.Begin()

	// Identical concurrent queries share one upstream pipeline run; the
	// geocoding and spatial services are rate limited and answer the same
	// question the same way.
	result, err, _ := s.group.Do(strings.ToLower(query), func() (interface{}, error) {
		return s.run(ctx, query)
	})
	if err != nil {
		return session.SearchView{}, err
	}

	view := result.(session.SearchView)
	if !s.session.Publish(seq, view) {
		s.log.WithContext(ctx).Debug("search result superseded, not published", "query", query)
	}
	return view, nil
}

// Current returns the latest published result view.
func (s *Service) Current() (session.SearchView, bool) {
	return s.session.Current()
}

// SelectHospital resolves a list selection to its map marker.
func (s *Service) SelectHospital(id string) (session.FocusView, error) {
	return s.session.Select(id)
}

func (s *Service) run(ctx context.Context, query string) (session.SearchView, error) {
	located, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return session.SearchView{}, err
	}

	primaryRadius := s.cfg.GetHospitalSearchRadiusKm()
	fallbackRadius := s.cfg.GetHospitalFallbackRadiusKm()

	hospitals, err := s.fetchAndRank(ctx, located.Coordinate, primaryRadius)
	if err != nil {
		return session.SearchView{}, err
	}

	radius := primaryRadius
	widened := false
	if len(hospitals) == 0 && fallbackRadius > primaryRadius {
		wider, err := s.fetchAndRank(ctx, located.Coordinate, fallbackRadius)
		if err != nil {
			return session.SearchView{}, err
		}
		hospitals = rank.Merge(hospitals, wider)
		radius = fallbackRadius
		widened = true
	}

	if len(hospitals) == 0 && s.cfg.IsTextSearchFallbackEnabled() {
		hospitals = s.textSearch(ctx, located.Coordinate, fallbackRadius)
		radius = fallbackRadius
		widened = true
	}

	view := session.BuildView(query, located.DisplayName, located.Coordinate, radius, widened, hospitals, s.cfg.GetMarkerIconURL())
	if len(hospitals) == 0 {
		view.Message = fmt.Sprintf("No hospitals found within %.0f km of %s. Try searching for a nearby city or district.", fallbackRadius, located.DisplayName)
	}
	return view, nil
}

func (s *Service) fetchAndRank(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]rank.Hospital, error) {
	elements, err := s.fetcher.FetchHospitals(ctx, origin, radiusKm)
	if err != nil {
		return nil, err
	}
	hospitals, drops := rank.Rank(origin, elements, radiusKm)
	for _, drop := range drops {
		s.log.FeatureDropped(drop.Variant, drop.ID, drop.Reason)
	}
	return hospitals, nil
}

// textSearch is best effort: it runs only after both structured passes came
// back empty, and its own failure degrades to the empty-state message rather
// than an error.
func (s *Service) textSearch(ctx context.Context, origin geo.Coordinate, radiusKm float64) []rank.Hospital {
	places, err := s.textSearcher.SearchHealthcare(ctx, origin, radiusKm)
	if err != nil {
		s.log.UpstreamError("nominatim", "healthcare text search", err)
		return nil
	}

	hospitals := make([]rank.Hospital, 0, len(places))
	for _, place := range places {
		distance := geo.Distance(origin, place.Coordinate)
		if distance > radiusKm {
			continue
		}
		hospitals = append(hospitals, rank.Hospital{
			ID:            fmt.Sprintf("place/%d", place.PlaceID),
			Name:          place.Name,
			Coordinate:    place.Coordinate,
			Address:       place.Address,
			Phone:         place.Phone,
			Website:       place.Website,
			DistanceKm:    distance,
			LowConfidence: true,
		})
	}

	sort.Slice(hospitals, func(i, j int) bool {
		if hospitals[i].DistanceKm != hospitals[j].DistanceKm {
			return hospitals[i].DistanceKm < hospitals[j].DistanceKm
		}
		return hospitals[i].Name < hospitals[j].Name
	})
	return hospitals
}
