package request

// CreateClient registers a service client. The API key is generated server
// side and returned once in the creation response.
type CreateClient struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}
