package entity

import "time"

// Estados posibles de una bodega.
const (
	WarehouseStatusActive   = "active"
	WarehouseStatusInactive = "inactive"
)

// Warehouse representa una bodega o sucursal donde se almacena inventario.
// Existe exactamente una bodega primaria: es la que se refleja en el stock
// del catálogo externo y no puede editarse ni desactivarse por la API normal.
type Warehouse struct {
	ID        int64
	Name      string
	Slug      string
	IsPrimary bool
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si la bodega está activa.
func (w *Warehouse) IsActive() bool {
	return w.Status == WarehouseStatusActive
}
