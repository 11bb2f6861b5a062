// Package transport defines the HTTP request and response shapes for the
// hospitals module.
package transport

// SearchRequest is the body of POST /api/hospitals/search.
type SearchRequest struct {
	Location string `json:"location" validate:"required,min=1,max=200"`
}

// SelectRequest is the body of POST /api/hospitals/select.
type SelectRequest struct {
	ID string `json:"id" validate:"required,min=1,max=64"`
}
