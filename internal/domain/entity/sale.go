package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ventas/internal/domain"
)

// SaleStatus es el estado de una venta.
type SaleStatus string

const (
	SaleDraft          SaleStatus = "DRAFT"
	SalePendingPayment SaleStatus = "PENDING_PAYMENT"
	SaleCompleted      SaleStatus = "COMPLETED"
	SaleCancelled      SaleStatus = "CANCELLED"
)

// PaymentTerms define la condición de pago.
type PaymentTerms string

const (
	TermsCash   PaymentTerms = "CONTADO"
	TermsCredit PaymentTerms = "CREDITO"
)

// Acciones sobre una venta, usadas por la tabla de transiciones.
const (
	SaleActionEdit     = "edit"
	SaleActionFinalize = "finalize"
	SaleActionCancel   = "cancel"
	SaleActionPay      = "pay"
)

// saleActions lista qué acciones admite cada estado.
var saleActions = map[SaleStatus]map[string]bool{
	SaleDraft:          {SaleActionEdit: true, SaleActionFinalize: true, SaleActionCancel: true},
	SalePendingPayment: {SaleActionCancel: true, SaleActionPay: true},
	SaleCompleted:      {SaleActionCancel: true},
	SaleCancelled:      {},
}

// Sale es la cabecera de una venta. Es dueña de sus líneas y pagos por valor;
// los hijos solo guardan SaleID.
type Sale struct {
	ID                  string
	Code                string // VEN-yyyyMMdd-0001
	Date                time.Time
	CustomerID          string
	CustomerName        string
	Currency            string
	ExchangeRate        decimal.Decimal
	PaymentTerms        PaymentTerms
	Installments        int
	WarehouseID         string // bodega por defecto de las líneas
	Lines               []SaleLine
	Payments            []Payment
	Subtotal            decimal.Decimal // base imponible
	Tax                 decimal.Decimal
	Total               decimal.Decimal
	Outstanding         decimal.Decimal
	InstallmentAmount   decimal.Decimal
	Status              SaleStatus
	NeedsReconciliation bool
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SaleLine es una línea de venta. Subtotal = round2(qty × precio × (1 − descuento/100)).
type SaleLine struct {
	ID          string
	SaleID      string
	ProductID   string
	WarehouseID string
	Quantity    int64
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	Subtotal    decimal.Decimal
}

// Payment es un pago registrado sobre una venta. Solo se agregan, nunca se modifican.
type Payment struct {
	ID                  string
	SaleID              string
	Amount              decimal.Decimal
	Currency            string
	Method              string
	Reference           string
	AccountID           string
	NormalizedAmount    decimal.Decimal // en la moneda de la venta
	NeedsReconciliation bool
	PaidAt              time.Time
}

// Can indica si la venta admite la acción en su estado actual.
func (s *Sale) Can(action string) bool {
	return saleActions[s.Status][action]
}

// Require devuelve un StateTransitionError si la acción no está permitida.
func (s *Sale) Require(action string) error {
	if s.Can(action) {
		return nil
	}
	return &domain.StateTransitionError{SaleID: s.ID, From: string(s.Status), Action: action}
}

// Paid suma los montos normalizados de los pagos.
func (s *Sale) Paid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.NormalizedAmount)
	}
	return total
}

// Terminal indica si la venta ya no admite cambios de líneas ni stock.
func (s *Sale) Terminal() bool {
	return s.Status == SaleCompleted || s.Status == SaleCancelled
}
