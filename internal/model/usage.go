package model

import "time"

// Usage is one recorded API request. Rows are written once by the tracking
// middleware and never updated. ClientID is nil for anonymous calls.
type Usage struct {
	ID         string    `json:"id"`
	ClientID   *string   `json:"client_id"`
	Path       string    `json:"path"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	Duration   float64   `json:"duration"`
	Timestamp  time.Time `json:"timestamp"`
}
