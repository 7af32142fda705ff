package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// CurrentStock es derivado: suma del stock de sus ubicaciones activas. Solo el repositorio lo recalcula.
type Product struct {
	ID           string
	Code         string // código único
	Name         string
	CategoryID   string
	Price        decimal.Decimal // precio de venta con impuesto incluido
	MinStock     int64
	CurrentStock int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BelowMinimum indica si el stock agregado está por debajo del mínimo del producto.
func (p *Product) BelowMinimum() bool {
	return p.MinStock > 0 && p.CurrentStock < p.MinStock
}
