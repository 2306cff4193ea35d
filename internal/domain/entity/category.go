package entity

import "time"

// Category representa una sección de la carta (entrantes, pizzas, postres...).
type Category struct {
	ID        string
	Name      string
	Slug      string // único
	Position  int    // orden de aparición en el menú
	CreatedAt time.Time
	UpdatedAt time.Time
}
