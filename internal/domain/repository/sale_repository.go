package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

// SaleFilter filtra ventas. Los campos vacíos no filtran.
type SaleFilter struct {
	Status     entity.SaleStatus
	CustomerID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SaleRepository define el puerto de persistencia para ventas con sus líneas y pagos.
type SaleRepository interface {
	LockDay(ctx context.Context, dayKey string) error
	LastSequence(ctx context.Context, dayKey string) (int, error)
	// Create guarda cabecera, líneas y pagos.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera y carga líneas y pagos.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// UpdateHeader persiste totales, saldo, estado y banderas.
	UpdateHeader(ctx context.Context, sale *entity.Sale) error
	ReplaceLines(ctx context.Context, saleID string, lines []entity.SaleLine) error
	AddPayment(ctx context.Context, p *entity.Payment) error
	// Delete borra físicamente una venta en borrador.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f SaleFilter) ([]*entity.Sale, error)
}
