package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
// Solo una bodega es la principal; se usa cuando una venta no indica bodega.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	IsMain    bool
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
