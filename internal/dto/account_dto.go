package dto

type CreateAccountRequest struct {
	Name   string  `json:"name"   validate:"required,min=2"`
	Bank   string  `json:"bank"   validate:"required,min=2"`
	Number *string `json:"number"`
}

type AccountResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Bank   string  `json:"bank"`
	Number *string `json:"number,omitempty"`
	Active bool    `json:"active"`
}

type CreateClientRequest struct {
	Name     string  `json:"name"     validate:"required,min=2"`
	Document *string `json:"document"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type ClientResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Document *string `json:"document,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
}
