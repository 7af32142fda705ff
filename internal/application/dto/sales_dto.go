package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de venta. UnitPrice nulo toma el precio del producto.
type SaleLineRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	WarehouseID string           `json:"warehouse_id"`
	Quantity    int64            `json:"quantity" validate:"gte=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
}

// PaymentRequest pago en cualquier moneda.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency" validate:"omitempty,len=3"`
	Method    string          `json:"method" validate:"max=50"`
	Reference string          `json:"reference" validate:"max=100"`
	AccountID string          `json:"account_id"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerID   string            `json:"customer_id"`
	Date         *time.Time        `json:"date,omitempty"`
	Currency     string            `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate *decimal.Decimal  `json:"exchange_rate,omitempty" validate:"required_if=Currency USD"`
	PaymentTerms string            `json:"payment_terms" validate:"omitempty,oneof=CONTADO CREDITO"`
	Installments int               `json:"installments" validate:"min=0,max=120"`
	WarehouseID  string            `json:"warehouse_id"`
	Lines        []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Payments     []PaymentRequest  `json:"payments" validate:"dive"`
}

// ReplaceLinesRequest body para PUT /api/sales/:id/lines.
type ReplaceLinesRequest struct {
	Lines []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CancelSaleRequest body opcional para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// SaleQuery filtros de GET /api/sales.
type SaleQuery struct {
	Status     string `query:"status" validate:"omitempty,oneof=DRAFT PENDING_PAYMENT COMPLETED CANCELLED"`
	CustomerID string `query:"customer_id"`
	From       string `query:"from"`
	To         string `query:"to"`
	Limit      int    `query:"limit" validate:"min=0,max=100"`
	Offset     int    `query:"offset" validate:"min=0"`
}

// SaleLineResponse salida de una línea.
type SaleLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PaymentResponse salida de un pago.
type PaymentResponse struct {
	ID                  string          `json:"id"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	Method              string          `json:"method,omitempty"`
	Reference           string          `json:"reference,omitempty"`
	AccountID           string          `json:"account_id,omitempty"`
	NormalizedAmount    decimal.Decimal `json:"normalized_amount"`
	NeedsReconciliation bool            `json:"needs_reconciliation"`
	PaidAt              time.Time       `json:"paid_at"`
}

// SaleResponse salida de una venta con sus líneas y pagos.
type SaleResponse struct {
	ID                  string             `json:"id"`
	Code                string             `json:"code"`
	Date                time.Time          `json:"date"`
	CustomerID          string             `json:"customer_id,omitempty"`
	CustomerName        string             `json:"customer_name"`
	Currency            string             `json:"currency"`
	ExchangeRate        decimal.Decimal    `json:"exchange_rate"`
	PaymentTerms        string             `json:"payment_terms"`
	Installments        int                `json:"installments"`
	WarehouseID         string             `json:"warehouse_id,omitempty"`
	Subtotal            decimal.Decimal    `json:"subtotal"`
	Tax                 decimal.Decimal    `json:"tax"`
	Total               decimal.Decimal    `json:"total"`
	Paid                decimal.Decimal    `json:"paid"`
	Outstanding         decimal.Decimal    `json:"outstanding"`
	InstallmentAmount   decimal.Decimal    `json:"installment_amount"`
	Status              string             `json:"status"`
	NeedsReconciliation bool               `json:"needs_reconciliation"`
	CreatedBy           string             `json:"created_by"`
	Lines               []SaleLineResponse `json:"lines"`
	Payments            []PaymentResponse  `json:"payments"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CancelSaleResponse resultado de anular: Deleted si era borrador, si no la venta y las devoluciones.
type CancelSaleResponse struct {
	Deleted   bool               `json:"deleted"`
	Sale      *SaleResponse      `json:"sale,omitempty"`
	Movements []MovementResponse `json:"movements,omitempty"`
}
