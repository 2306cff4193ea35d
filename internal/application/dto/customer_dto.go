package dto

import "time"

// CustomerResponse cliente para el back office y /api/me.
type CustomerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	HasPassword bool      `json:"has_password"`
	Providers   []string  `json:"providers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerListResponse listado paginado.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// UpdateCustomerRequest edición desde el back office. Campos nil no cambian.
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
}

// UpdateProfileRequest PUT /api/me. NewPassword exige CurrentPassword si ya había contraseña.
type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Surname         *string `json:"surname"`
	Phone           *string `json:"phone"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}
