package repository

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	// GetMain devuelve la bodega principal o nil si no hay ninguna.
	GetMain(ctx context.Context) (*entity.Warehouse, error)
	List(ctx context.Context) ([]*entity.Warehouse, error)
}
