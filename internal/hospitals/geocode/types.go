package geocode

import "medicare_backend/internal/hospitals/geo"

// Result is a resolved location: a single coordinate plus a human-readable
// display name. Produced once per search and owned by the caller.
type Result struct {
	Coordinate  geo.Coordinate `json:"coordinate"`
	DisplayName string         `json:"displayName"`
}

// Place is a healthcare candidate from the free-text fallback search. It is
// heuristic data, kept separate from the tag-verified Overpass results.
type Place struct {
	PlaceID     int64
	Name        string
	DisplayName string
	Coordinate  geo.Coordinate
	Address     string
	Phone       string
	Website     string
}

// nominatimResponse mirrors the relevant parts of the OSM search payload.
// Latitude and longitude arrive string-encoded.
type nominatimResponse struct {
	PlaceID     int64             `json:"place_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Class       string            `json:"class"`
	Type        string            `json:"type"`
	Category    string            `json:"category"`
	ExtraTags   map[string]string `json:"extratags"`
}
