package model

// ResolveRequest is the body of POST /api/v1/geo/resolve
type ResolveRequest struct {
	Input string `json:"input" validate:"required"`
}

// CoordinatesRequest is the body of coordinate-based endpoints
type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// CreateRequestInput is the body of POST /api/v1/requests.
// Either Input or both coordinates must be present.
type CreateRequestInput struct {
	Input     string   `json:"input"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	DateStart string   `json:"dateStart" validate:"required"`
	DateEnd   string   `json:"dateEnd" validate:"required"`
	Notes     *string  `json:"notes"`
}

// UpdateRequestInput is the body of PATCH /api/v1/requests/{id}.
// Nil fields are left unchanged.
type UpdateRequestInput struct {
	Input     *string  `json:"input"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	DateStart *string  `json:"dateStart"`
	DateEnd   *string  `json:"dateEnd"`
	Notes     *string  `json:"notes"`
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// DeleteResponse is returned after a successful delete
type DeleteResponse struct {
	OK bool `json:"ok"`
}
