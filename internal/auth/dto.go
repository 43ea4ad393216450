package auth

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Apartment string `json:"apartment" validate:"required,max=10"`
	Password  string `json:"password" validate:"required"`
}
