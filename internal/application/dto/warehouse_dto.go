package dto

import "time"

// SaveWarehouseRequest entrada para crear o actualizar una bodega. ID en
// cero crea; ID positivo actualiza.
type SaveWarehouseRequest struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Slug   string `json:"slug,omitempty" validate:"omitempty,max=200"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsPrimary bool      `json:"is_primary"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
