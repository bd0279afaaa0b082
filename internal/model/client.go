package model

import "time"

// Client is a registered consumer of the API. The api_key column holds the
// opaque credential presented on each request.
type Client struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	APIKey      string    `json:"api_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClientResponse is the outward projection of a client. created_at stays
// internal.
type ClientResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	APIKey      string  `json:"api_key"`
}
