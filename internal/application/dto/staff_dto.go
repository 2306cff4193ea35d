package dto

import "time"

// CreateStaffRequest alta de un miembro del staff (solo admin).
type CreateStaffRequest struct {
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin moderator member"`
}

// UpdateStaffRequest campos nil no cambian.
type UpdateStaffRequest struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// StaffResponse miembro del staff sin el hash.
type StaffResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StaffProfileResponse perfil del staff autenticado con sus capacidades vigentes
// (el panel oculta lo que el rol no permite).
type StaffProfileResponse struct {
	StaffResponse
	Capabilities []string `json:"capabilities"`
}

// StaffListResponse listado paginado.
type StaffListResponse struct {
	Items []StaffResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
