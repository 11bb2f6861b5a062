package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 13.0827, Lon: 80.2707},
		{Lat: -45.5, Lon: 170.2},
	}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	chennai := Coordinate{Lat: 13.0827, Lon: 80.2707}
	mumbai := Coordinate{Lat: 19.0760, Lon: 72.8777}

	ab := Distance(chennai, mumbai)
	ba := Distance(mumbai, chennai)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Chennai to Bangalore is roughly 290 km great-circle.
	chennai := Coordinate{Lat: 13.0827, Lon: 80.2707}
	bangalore := Coordinate{Lat: 12.9716, Lon: 77.5946}

	d := Distance(chennai, bangalore)
	if d < 280 || d > 300 {
		t.Fatalf("Chennai-Bangalore distance = %f km, expected ~290", d)
	}
}

func TestCoordinateValid(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinate
		want bool
	}{
		{"origin", Coordinate{0, 0}, true},
		{"chennai", Coordinate{13.08, 80.27}, true},
		{"lat too high", Coordinate{91, 0}, false},
		{"lat too low", Coordinate{-91, 0}, false},
		{"lon too high", Coordinate{0, 181}, false},
		{"lon too low", Coordinate{0, -181}, false},
		{"nan lat", Coordinate{math.NaN(), 0}, false},
		{"inf lon", Coordinate{0, math.Inf(1)}, false},
		{"edge", Coordinate{90, 180}, true},
	}
	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	if got := FormatDistance(0.5); got != "500 m" {
		t.Errorf("FormatDistance(0.5) = %q", got)
	}
	if got := FormatDistance(1.23); got != "1.2 km" {
		t.Errorf("FormatDistance(1.23) = %q", got)
	}
}

func TestViewboxAroundContainsCenter(t *testing.T) {
	center := Coordinate{Lat: 13.0827, Lon: 80.2707}
	box := ViewboxAround(center, 10)

	if center.Lat <= box.MinLat || center.Lat >= box.MaxLat {
		t.Fatalf("center latitude outside box: %v", box)
	}
	if center.Lon <= box.MinLon || center.Lon >= box.MaxLon {
		t.Fatalf("center longitude outside box: %v", box)
	}

	// The box must span at least the requested radius in latitude.
	north := Coordinate{Lat: box.MaxLat, Lon: center.Lon}
	if Distance(center, north) < 9.9 {
		t.Fatalf("box spans %.2f km north, want >= ~10", Distance(center, north))
	}
}
