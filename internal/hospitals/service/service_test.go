package service

import (
	"context"
	"strings"
	"testing"

	"medicare_backend/internal/hospitals/geo"
	"medicare_backend/internal/hospitals/geocode"
	"medicare_backend/internal/hospitals/overpass"
	"medicare_backend/platform/apperr"
	"medicare_backend/platform/logger"
)

var chennai = geo.Coordinate{Lat: 13.0827, Lon: 80.2707}

type fakeGeocoder struct {
	result geocode.Result
	err    error
}

func (f *fakeGeocoder) Search(ctx context.Context, locationText string) (geocode.Result, error) {
	if f.err != nil {
		return geocode.Result{}, f.err
	}
	return f.result, nil
}

type fakeFetcher struct {
	byRadius map[float64][]overpass.Element
	err      error
	radii    []float64
}

func (f *fakeFetcher) FetchHospitals(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]overpass.Element, error) {
	f.radii = append(f.radii, radiusKm)
	if f.err != nil {
		return nil, f.err
	}
	return f.byRadius[radiusKm], nil
}

type fakeTextSearcher struct {
	places []geocode.Place
	err    error
	called bool
}

func (f *fakeTextSearcher) SearchHealthcare(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]geocode.Place, error) {
	f.called = true
	return f.places, f.err
}

type searchConfig struct {
	primary      float64
	fallback     float64
	textFallback bool
	icon         string
}

func (c searchConfig) GetHospitalSearchRadiusKm() float64   { return c.primary }
func (c searchConfig) GetHospitalFallbackRadiusKm() float64 { return c.fallback }
func (c searchConfig) IsTextSearchFallbackEnabled() bool    { return c.textFallback }
func (c searchConfig) GetMarkerIconURL() string             { return c.icon }

func hospitalNode(id int64, km float64, name string) overpass.Element {
	lat := chennai.Lat + km/111.0
	lon := chennai.Lon
	return overpass.Element{
		Type: overpass.VariantNode, ID: id, Lat: &lat, Lon: &lon,
		Tags: map[string]string{"amenity": "hospital", "name": name},
	}
}

func newTestService(g Geocoder, f Fetcher, t TextSearcher, cfg searchConfig) *Service {
	return NewService(g, f, t, cfg, logger.New("development"))
}

func chennaiGeocoder() *fakeGeocoder {
	return &fakeGeocoder{result: geocode.Result{
		Coordinate:  chennai,
		DisplayName: "Chennai, Tamil Nadu, India",
	}}
}

func TestSearchPrimaryRadiusHit(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[float64][]overpass.Element{
		7: {hospitalNode(1, 2, "Apollo"), hospitalNode(2, 5, "Fortis")},
	}}
	svc := newTestService(chennaiGeocoder(), fetcher, &fakeTextSearcher{}, searchConfig{primary: 7, fallback: 10})

	view, err := svc.Search(context.Background(), "Chennai")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if view.Widened {
		t.Fatal("primary hit should not widen")
	}
	if view.RadiusKm != 7 {
		t.Fatalf("radius = %v, want 7", view.RadiusKm)
	}
	if len(view.Entries) != 2 || view.Entries[0].Name != "Apollo" {
		t.Fatalf("entries = %+v", view.Entries)
	}
	if len(fetcher.radii) != 1 {
		t.Fatalf("fetch radii = %v, want single primary pass", fetcher.radii)
	}
}

func TestSearchWidensWhenPrimaryEmpty(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[float64][]overpass.Element{
		7:  nil,
		10: {hospitalNode(1, 8.5, "District General")},
	}}
	svc := newTestService(chennaiGeocoder(), fetcher, &fakeTextSearcher{}, searchConfig{primary: 7, fallback: 10})

	view, err := svc.Search(context.Background(), "Chennai")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !view.Widened || view.RadiusKm != 10 {
		t.Fatalf("widened=%v radius=%v, want widened at 10", view.Widened, view.RadiusKm)
	}
	if len(view.Entries) != 1 || view.Entries[0].Name != "District General" {
		t.Fatalf("entries = %+v", view.Entries)
	}
	if len(fetcher.radii) != 2 || fetcher.radii[0] != 7 || fetcher.radii[1] != 10 {
		t.Fatalf("fetch radii = %v, want [7 10]", fetcher.radii)
	}
}

func TestSearchEmptyBothRadiiIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[float64][]overpass.Element{}}
	text := &fakeTextSearcher{}
	svc := newTestService(chennaiGeocoder(), fetcher, text, searchConfig{primary: 7, fallback: 10})

	view, err := svc.Search(context.Background(), "Chennai")
	if err != nil {
		t.Fatalf("empty result should not be an error: %v", err)
	}
	if view.Message == "" {
		t.Fatal("expected an empty-state message")
	}
	if !strings.Contains(view.Message, "10 km") {
		t.Fatalf("message should name the widest radius: %q", view.Message)
	}
	if text.called {
		t.Fatal("text fallback is off by default")
	}
	if len(view.Markers) != 1 || !view.Markers[0].Origin {
		t.Fatalf("empty view should still carry the origin marker, got %+v", view.Markers)
	}
}

func TestSearchTextFallbackWhenEnabled(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[float64][]overpass.Element{}}
	text := &fakeTextSearcher{places: []geocode.Place{{
		PlaceID:    991,
		Name:       "Chennai Medical Center",
		Coordinate: geo.Coordinate{Lat: chennai.Lat + 0.02, Lon: chennai.Lon},
		Address:    "Anna Salai, Chennai",
	}}}
	svc := newTestService(chennaiGeocoder(), fetcher, text, searchConfig{primary: 7, fallback: 10, textFallback: true})

	view, err := svc.Search(context.Background(), "Chennai")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !text.called {
		t.Fatal("text fallback should run after both radii came back empty")
	}
	if len(view.Entries) != 1 {
		t.Fatalf("entries = %+v", view.Entries)
	}
	if !view.Entries[0].LowConfidence {
		t.Fatal("text fallback results must be flagged low confidence")
	}
	if view.Entries[0].ID != "place/991" {
		t.Fatalf("id = %q", view.Entries[0].ID)
	}
}

func TestSearchGeocodeErrorPropagates(t *testing.T) {
	geocoder := &fakeGeocoder{err: apperr.NotFound("Location not found. Please try a different location name.")}
	text := &fakeTextSearcher{}
	svc := newTestService(geocoder, &fakeFetcher{}, text, searchConfig{primary: 7, fallback: 10, textFallback: true})

	_, err := svc.Search(context.Background(), "xyzzy nowhere")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want not found", apperr.GetKind(err))
	}
	if text.called {
		t.Fatal("fallback must not mask a geocoding failure")
	}
}

func TestSearchFetchErrorPropagates(t *testing.T) {
	fetcher := &fakeFetcher{err: apperr.Unavailable("hospital data service is unavailable")}
	text := &fakeTextSearcher{}
	svc := newTestService(chennaiGeocoder(), fetcher, text, searchConfig{primary: 7, fallback: 10, textFallback: true})

	_, err := svc.Search(context.Background(), "Chennai")
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("kind = %v, want unavailable", apperr.GetKind(err))
	}
	if text.called {
		t.Fatal("fallback must not mask a transport failure")
	}
}

func TestSearchRejectsBlankInput(t *testing.T) {
	svc := newTestService(chennaiGeocoder(), &fakeFetcher{}, &fakeTextSearcher{}, searchConfig{primary: 7, fallback: 10})

	_, err := svc.Search(context.Background(), "   ")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}
}

// blockingFetcher parks the first search inside the fetch until released, so
// the test can interleave a second search deterministically.
type blockingFetcher struct {
	entered  chan struct{}
	release  chan struct{}
	elements []overpass.Element
	blocked  bool
}

func (f *blockingFetcher) FetchHospitals(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]overpass.Element, error) {
	if !f.blocked {
		f.blocked = true
		close(f.entered)
		<-f.release
	}
	return f.elements, nil
}

func TestSearchStaleResultDoesNotBecomeCurrent(t *testing.T) {
	slow := &blockingFetcher{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		elements: []overpass.Element{hospitalNode(1, 2, "Apollo")},
	}
	svc := newTestService(chennaiGeocoder(), slow, &fakeTextSearcher{}, searchConfig{primary: 7, fallback: 10})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.Search(context.Background(), "Chennai"); err != nil {
			t.Errorf("slow search failed: %v", err)
		}
	}()

	// Wait until the Chennai search is in flight, then run a newer one.
	<-slow.entered
	if _, err := svc.Search(context.Background(), "Mumbai"); err != nil {
		t.Fatalf("second search failed: %v", err)
	}

	close(slow.release)
	<-done

	current, ok := svc.Current()
	if !ok {
		t.Fatal("expected a current view")
	}
	if current.Query != "Mumbai" {
		t.Fatalf("current query = %q; the older search must not overwrite the newer result", current.Query)
	}
}

func TestSelectHospitalFromCurrentView(t *testing.T) {
	fetcher := &fakeFetcher{byRadius: map[float64][]overpass.Element{
		7: {hospitalNode(1, 2, "Apollo")},
	}}
	svc := newTestService(chennaiGeocoder(), fetcher, &fakeTextSearcher{}, searchConfig{primary: 7, fallback: 10})

	if _, err := svc.Search(context.Background(), "Chennai"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	focus, err := svc.SelectHospital("node/1")
	if err != nil {
		t.Fatalf("SelectHospital: %v", err)
	}
	if focus.Marker.Label != "Apollo" {
		t.Fatalf("marker = %+v", focus.Marker)
	}

	if _, err := svc.SelectHospital("node/404"); apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("unknown id should be not found, got %v", err)
	}
}
