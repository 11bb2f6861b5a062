// Package rank normalizes raw spatial features into Hospital records, computes
// great-circle distances from the search origin, and orders the results.
// Everything here is pure: no I/O, no shared state, deterministic for
// identical inputs.
package rank

import (
	"sort"
	"strings"

	"medicare_backend/internal/hospitals/geo"
	"medicare_backend/internal/hospitals/overpass"
)

// Hospital is a normalized, ranked search result.
type Hospital struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Address    string         `json:"address"`
	Phone      string         `json:"phone,omitempty"`
	Website    string         `json:"website,omitempty"`
	DistanceKm float64        `json:"distanceKm"`
	// LowConfidence marks results from the heuristic free-text fallback
	// rather than the tag-verified spatial query.
	LowConfidence bool `json:"lowConfidence,omitempty"`
}

// Drop records a feature that could not be normalized. Drops are diagnostics
// for logging, never user-facing errors.
type Drop struct {
	Variant string
	ID      int64
	Reason  string
}

// addressTagOrder is the fixed join order for structured address tags.
var addressTagOrder = []string{
	"addr:housenumber",
	"addr:street",
	"addr:city",
	"addr:state",
	"addr:postcode",
	"addr:district",
}

// nameTagOrder is the fallback chain for the display name.
var nameTagOrder = []string{"name", "name:en", "name:hi", "name:ta"}

const unnamedHospital = "Unnamed Hospital"
const noAddress = "Address not available"

// Rank converts raw features into Hospitals ordered by ascending distance from
// the origin, ties broken by name. Features outside radiusKm are cut here even
// if the fetch radius admitted them; the fetch radius is advisory for some
// sources, this cut is authoritative. Duplicates (same variant+id) keep the
// first occurrence.
func Rank(origin geo.Coordinate, elements []overpass.Element, radiusKm float64) ([]Hospital, []Drop) {
	hospitals := make([]Hospital, 0, len(elements))
	var drops []Drop
	seen := make(map[string]bool)

	for _, element := range elements {
		hospital, drop := normalize(origin, element)
		if drop != nil {
			drops = append(drops, *drop)
			continue
		}
		if hospital.DistanceKm > radiusKm {
			drops = append(drops, Drop{Variant: element.Type, ID: element.ID, Reason: "outside radius"})
			continue
		}
		if seen[hospital.ID] {
			continue
		}
		seen[hospital.ID] = true
		hospitals = append(hospitals, hospital)
	}

	sort.Slice(hospitals, func(i, j int) bool {
		if hospitals[i].DistanceKm != hospitals[j].DistanceKm {
			return hospitals[i].DistanceKm < hospitals[j].DistanceKm
		}
		return hospitals[i].Name < hospitals[j].Name
	})

	return hospitals, drops
}

// Merge combines a primary result set with additional hospitals found by a
// widened search. Widening is additive: primaries are never displaced, and
// duplicates from the wider pass are discarded. The combined set is re-sorted
// under the same ordering rules.
func Merge(primary, widened []Hospital) []Hospital {
	seen := make(map[string]bool, len(primary))
	merged := make([]Hospital, 0, len(primary)+len(widened))
	for _, h := range primary {
		seen[h.ID] = true
		merged = append(merged, h)
	}
	for _, h := range widened {
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		merged = append(merged, h)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].DistanceKm != merged[j].DistanceKm {
			return merged[i].DistanceKm < merged[j].DistanceKm
		}
		return merged[i].Name < merged[j].Name
	})

	return merged
}

// normalize builds a Hospital from one raw feature, or explains why it cannot.
func normalize(origin geo.Coordinate, element overpass.Element) (Hospital, *Drop) {
	// The query's own tag filter is trusted but re-validated: broader
	// queries can return super/sub members with other amenity values.
	if element.Tags["amenity"] != "hospital" {
		return Hospital{}, &Drop{Variant: element.Type, ID: element.ID, Reason: "not tagged amenity=hospital"}
	}

	coord, reason := elementCoordinate(element)
	if reason != "" {
		return Hospital{}, &Drop{Variant: element.Type, ID: element.ID, Reason: reason}
	}
	if !coord.Valid() {
		return Hospital{}, &Drop{Variant: element.Type, ID: element.ID, Reason: "invalid coordinates"}
	}

	return Hospital{
		ID:         element.Key(),
		Name:       hospitalName(element.Tags),
		Coordinate: coord,
		Address:    buildAddress(element.Tags),
		Phone:      firstTag(element.Tags, "phone", "contact:phone", "contact:mobile"),
		Website:    firstTag(element.Tags, "website", "contact:website"),
		DistanceKm: geo.Distance(origin, coord),
	}, nil
}

// elementCoordinate resolves the feature geometry to a single coordinate.
// Nodes use their direct position; ways and relations never carry one and
// must use the precomputed centroid. A missing centroid makes the feature
// unusable; it is skipped, never zero-filled.
func elementCoordinate(element overpass.Element) (geo.Coordinate, string) {
	switch element.Type {
	case overpass.VariantNode:
		if element.Lat == nil || element.Lon == nil {
			return geo.Coordinate{}, "node without coordinates"
		}
		return geo.Coordinate{Lat: *element.Lat, Lon: *element.Lon}, ""
	case overpass.VariantWay, overpass.VariantRelation:
		if element.Center == nil {
			return geo.Coordinate{}, "no center coordinates"
		}
		return geo.Coordinate{Lat: element.Center.Lat, Lon: element.Center.Lon}, ""
	default:
		return geo.Coordinate{}, "unknown element type"
	}
}

func hospitalName(tags map[string]string) string {
	for _, key := range nameTagOrder {
		if name := strings.TrimSpace(tags[key]); name != "" {
			return name
		}
	}
	return unnamedHospital
}

func buildAddress(tags map[string]string) string {
	parts := make([]string, 0, len(addressTagOrder))
	for _, key := range addressTagOrder {
		if part := strings.TrimSpace(tags[key]); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	if full := strings.TrimSpace(tags["addr:full"]); full != "" {
		return full
	}
	return noAddress
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(tags[key]); value != "" {
			return value
		}
	}
	return ""
}
