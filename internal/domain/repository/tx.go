package repository

import "context"

// Repos agrupa los repositorios ligados a una misma transacción.
type Repos struct {
	Products   ProductRepository
	Warehouses WarehouseRepository
	Customers  CustomerRepository
	Locations  StockLocationRepository
	Movements  MovementRepository
	Sales      SaleRepository
}

// TxRunner ejecuta fn dentro de una transacción: commit si fn devuelve nil, rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Repos) error) error
}
