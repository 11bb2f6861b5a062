// Package session holds the current hospital search result for a client
// session and keeps the map and list representations of it consistent.
// Both views are derived from one published snapshot, so they can never
// disagree about which hospitals exist or in what order.
package session

import (
	"sync"

	"medicare_backend/internal/hospitals/geo"
	"medicare_backend/internal/hospitals/rank"
	"medicare_backend/platform/apperr"
)

// defaultMarkerIconURL matches the red map pin the web client ships with.
const defaultMarkerIconURL = "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-2x-red.png"

// Marker is a map pin for one hospital or for the search origin.
type Marker struct {
	ID         string         `json:"id"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Label      string         `json:"label"`
	IconURL    string         `json:"iconUrl"`
	Origin     bool           `json:"origin,omitempty"`
}

// Entry is one row of the ranked list. Entries and markers for the same
// snapshot are index-aligned for hospitals (markers carry one extra leading
// origin pin).
type Entry struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone,omitempty"`
	Website       string  `json:"website,omitempty"`
	DistanceKm    float64 `json:"distanceKm"`
	Distance      string  `json:"distance"`
	LowConfidence bool    `json:"lowConfidence,omitempty"`
}

// SearchView is one published result snapshot: the map markers and list
// entries for a single completed search.
type SearchView struct {
	Query       string         `json:"query"`
	DisplayName string         `json:"displayName"`
	Origin      geo.Coordinate `json:"origin"`
	RadiusKm    float64        `json:"radiusKm"`
	Widened     bool           `json:"widened"`
	Markers     []Marker       `json:"markers"`
	Entries     []Entry        `json:"entries"`
	// SelectedID is the entry currently highlighted on the map and list,
	// empty when nothing is selected. At most one entry is highlighted.
	SelectedID string `json:"selectedId,omitempty"`
	// Message is set instead of results when the search succeeded but
	// found nothing inside the widest radius.
	Message string `json:"message,omitempty"`
}

// FocusView identifies the hospital a selection should center the map on.
type FocusView struct {
	Entry  Entry  `json:"entry"`
	Marker Marker `json:"marker"`
}

// BuildView derives the paired map and list representations from a ranked
// result set. The marker icon defaults to the client's red pin when the
// deployment does not override it.
func BuildView(query, displayName string, origin geo.Coordinate, radiusKm float64, widened bool, hospitals []rank.Hospital, iconURL string) SearchView {
	if iconURL == "" {
		iconURL = defaultMarkerIconURL
	}

	view := SearchView{
		Query:       query,
		DisplayName: displayName,
		Origin:      origin,
		RadiusKm:    radiusKm,
		Widened:     widened,
		Markers:     make([]Marker, 0, len(hospitals)+1),
		Entries:     make([]Entry, 0, len(hospitals)),
	}

	view.Markers = append(view.Markers, Marker{
		ID:         "origin",
		Coordinate: origin,
		Label:      displayName,
		IconURL:    iconURL,
		Origin:     true,
	})

	for _, h := range hospitals {
		view.Markers = append(view.Markers, Marker{
			ID:         h.ID,
			Coordinate: h.Coordinate,
			Label:      h.Name,
			IconURL:    iconURL,
		})
		view.Entries = append(view.Entries, Entry{
			ID:            h.ID,
			Name:          h.Name,
			Address:       h.Address,
			Phone:         h.Phone,
			Website:       h.Website,
			DistanceKm:    h.DistanceKm,
			Distance:      geo.FormatDistance(h.DistanceKm),
			LowConfidence: h.LowConfidence,
		})
	}

	return view
}

// Session serializes result publication for one client. Searches may overlap
// when a user fires a new query before the previous one resolves; the
// sequence number handed out by Begin decides which result is current, and a
// stale publish is discarded whole rather than merged.
type Session struct {
	mu      sync.Mutex
	seq     uint64
	latest  uint64
	current *SearchView
}

// New returns an empty session with no published result.
func New() *Session {
	return &Session{}
}

// Begin registers a new search and returns its sequence number. Every search
// must call Begin before doing work so a later search always outranks an
// earlier one, regardless of which finishes first.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.latest = s.seq
	return s.seq
}

// Publish installs view as the current result if seq still belongs to the
// most recent search. It reports whether the view was accepted; a false
// return means a newer search superseded this one and the view was dropped.
// Publishing always starts the new snapshot with no selection.
func (s *Session) Publish(seq uint64, view SearchView) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.latest {
		return false
	}
	view.SelectedID = ""
	s.current = &view
	return true
}

// Current returns the latest published view. The second return is false when
// no search has published yet (or all completed searches were superseded).
func (s *Session) Current() (SearchView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return SearchView{}, false
	}
	return *s.current, true
}

// Select resolves a hospital ID against the current view for map focusing and
// records it as the snapshot's highlighted entry, replacing any previous
// selection. Selecting from a view that is no longer current fails with
// not-found, the same as an unknown ID: the client's list and the session's
// map state must refer to the same snapshot.
func (s *Session) Select(id string) (FocusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return FocusView{}, apperr.NotFound("no active search result")
	}
	for i, entry := range s.current.Entries {
		if entry.ID != id {
			continue
		}
		s.current.SelectedID = entry.ID
		// Hospital markers start after the leading origin marker.
		return FocusView{Entry: entry, Marker: s.current.Markers[i+1]}, nil
	}
	return FocusView{}, apperr.NotFound("hospital not found in current results")
}
