package foodshop

import "encoding/json"

// Envelope is the uniform response wrapper the backend emits.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Pagination is the Laravel-style page envelope wrapping every list.
type Pagination[T any] struct {
	Data        []T     `json:"data"`
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
	From        int     `json:"from"`
	To          int     `json:"to"`
	NextPageURL *string `json:"next_page_url"`
	PrevPageURL *string `json:"prev_page_url"`
}

// HasMore reports whether pages remain after the current one.
func (p Pagination[T]) HasMore() bool {
	return p.CurrentPage < p.LastPage
}
