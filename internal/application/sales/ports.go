package sales

import (
	"context"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// StockLedger es la parte del kardex que usa el motor de ventas.
// Ambas operaciones se unen a la transacción de la venta: si fallan, la venta hace rollback.
type StockLedger interface {
	RecordOutboundInTx(ctx context.Context, tx repository.Repos, warehouseID string, in inventory.MovementInput) (*entity.Movement, error)
	RecordInboundInTx(ctx context.Context, tx repository.Repos, warehouseID string, in inventory.MovementInput) (*entity.Movement, error)
}

// Metrics recibe los eventos del ciclo de vida de una venta.
type Metrics interface {
	SaleTransition(from, to entity.SaleStatus)
	PaymentRecorded(currency string, needsReconciliation bool)
}

type nopMetrics struct{}

func (nopMetrics) SaleTransition(entity.SaleStatus, entity.SaleStatus) {}
func (nopMetrics) PaymentRecorded(string, bool)                        {}

// NopMetrics descarta los eventos.
var NopMetrics Metrics = nopMetrics{}

// ReceiptLine es una línea de venta con el nombre del producto para el comprobante.
type ReceiptLine struct {
	entity.SaleLine
	ProductCode string
	ProductName string
}

// ReceiptGenerator genera la representación PDF de una venta.
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, sale *entity.Sale, lines []ReceiptLine) ([]byte, error)
}
