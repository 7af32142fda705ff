package repository

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

// StockLocationRepository define el puerto para el stock por (producto, bodega).
// Las escrituras solo ocurren dentro de una transacción.
type StockLocationRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockLocation, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLocation, error)
	// Create no falla si la ubicación ya existe; en ese caso no la modifica.
	Create(ctx context.Context, loc *entity.StockLocation) error
	UpdateStock(ctx context.Context, id string, stock int64) error
	SetActive(ctx context.Context, id string, active bool) error
	SetMinStock(ctx context.Context, id string, min *int64) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockLocation, error)
}
