package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"medicare_backend/internal/hospitals/geo"
	"medicare_backend/internal/hospitals/geocode"
	"medicare_backend/internal/hospitals/overpass"
	"medicare_backend/internal/hospitals/service"
	"medicare_backend/platform/apperr"
	"medicare_backend/platform/logger"
	"medicare_backend/platform/validator"
)

var chennai = geo.Coordinate{Lat: 13.0827, Lon: 80.2707}

type fakeGeocoder struct {
	result geocode.Result
	err    error
}

func (f *fakeGeocoder) Search(ctx context.Context, locationText string) (geocode.Result, error) {
	return f.result, f.err
}

func (f *fakeGeocoder) SearchHealthcare(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]geocode.Place, error) {
	return nil, nil
}

type fakeFetcher struct {
	elements []overpass.Element
}

func (f *fakeFetcher) FetchHospitals(ctx context.Context, origin geo.Coordinate, radiusKm float64) ([]overpass.Element, error) {
	return f.elements, nil
}

type searchConfig struct{}

func (searchConfig) GetHospitalSearchRadiusKm() float64   { return 7 }
func (searchConfig) GetHospitalFallbackRadiusKm() float64 { return 10 }
func (searchConfig) IsTextSearchFallbackEnabled() bool    { return false }
func (searchConfig) GetMarkerIconURL() string             { return "" }

func hospitalNode(id int64, name string) overpass.Element {
	lat, lon := chennai.Lat+0.01, chennai.Lon
	return overpass.Element{
		Type: "node",
		ID:   id,
		Lat:  &lat,
		Lon:  &lon,
		Tags: map[string]string{"amenity": "hospital", "name": name},
	}
}

func newTestRouter(t *testing.T, geocoder *fakeGeocoder, fetcher *fakeFetcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewService(geocoder, fetcher, geocoder, searchConfig{}, logger.New("development"))
	h := New(svc, validator.New())

	engine := gin.New()
	engine.POST("/api/hospitals/search", h.Search)
	engine.GET("/api/hospitals/current", h.Current)
	engine.POST("/api/hospitals/select", h.Select)
	return engine
}

func postJSON(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSearchReturnsRankedView(t *testing.T) {
	geocoder := &fakeGeocoder{result: geocode.Result{Coordinate: chennai, DisplayName: "Chennai, Tamil Nadu, India"}}
	fetcher := &fakeFetcher{elements: []overpass.Element{hospitalNode(1, "Apollo")}}
	engine := newTestRouter(t, geocoder, fetcher)

	rec := postJSON(engine, "/api/hospitals/search", `{"location": "chennai"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view struct {
		DisplayName string `json:"displayName"`
		Markers     []struct {
			Origin bool `json:"origin"`
		} `json:"markers"`
		Entries []struct {
			Name string `json:"name"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.DisplayName != "Chennai, Tamil Nadu, India" {
		t.Fatalf("displayName = %q", view.DisplayName)
	}
	if len(view.Entries) != 1 || view.Entries[0].Name != "Apollo" {
		t.Fatalf("entries = %+v", view.Entries)
	}
	if len(view.Markers) != 2 || !view.Markers[0].Origin {
		t.Fatalf("markers = %+v", view.Markers)
	}
}

func TestSearchRejectsInvalidJSON(t *testing.T) {
	engine := newTestRouter(t, &fakeGeocoder{}, &fakeFetcher{})

	rec := postJSON(engine, "/api/hospitals/search", `{"location": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchRejectsBlankLocation(t *testing.T) {
	engine := newTestRouter(t, &fakeGeocoder{}, &fakeFetcher{})

	// An empty location fails struct validation; a whitespace-only one
	// passes it and is rejected by the service after trimming.
	for _, body := range []string{`{"location": ""}`, `{"location": "   "}`} {
		if rec := postJSON(engine, "/api/hospitals/search", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestSearchUnknownLocationMapsToNotFound(t *testing.T) {
	geocoder := &fakeGeocoder{err: apperr.NotFound("Location not found. Please try a different search term.")}
	engine := newTestRouter(t, geocoder, &fakeFetcher{})

	rec := postJSON(engine, "/api/hospitals/search", `{"location": "nowhereville"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCurrentBeforeAnySearch(t *testing.T) {
	engine := newTestRouter(t, &fakeGeocoder{}, &fakeFetcher{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hospitals/current", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before any search", rec.Code)
	}
}

func TestSelectResolvesMarkerFromCurrentResult(t *testing.T) {
	geocoder := &fakeGeocoder{result: geocode.Result{Coordinate: chennai, DisplayName: "Chennai"}}
	fetcher := &fakeFetcher{elements: []overpass.Element{hospitalNode(1, "Apollo")}}
	engine := newTestRouter(t, geocoder, fetcher)

	if rec := postJSON(engine, "/api/hospitals/search", `{"location": "chennai"}`); rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}

	rec := postJSON(engine, "/api/hospitals/select", `{"id": "node/1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var focus struct {
		Marker struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"marker"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &focus); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if focus.Marker.ID != "node/1" || focus.Marker.Label != "Apollo" {
		t.Fatalf("marker = %+v", focus.Marker)
	}

	if rec := postJSON(engine, "/api/hospitals/select", `{"id": "node/999"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", rec.Code)
	}
}
