package entity

import "time"

// StockLocation es el stock de un producto en una bodega. Único por (ProductID, WarehouseID).
// Stock nunca es negativo. Una ubicación inactiva no cuenta para el stock del producto.
type StockLocation struct {
	ID          string
	ProductID   string
	WarehouseID string
	Stock       int64
	MinStock    *int64 // mínimo propio de la ubicación, opcional
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BelowMinimum usa el mínimo de la ubicación si existe, si no el del producto.
func (l *StockLocation) BelowMinimum(productMin int64) bool {
	min := productMin
	if l.MinStock != nil {
		min = *l.MinStock
	}
	return min > 0 && l.Stock < min
}
