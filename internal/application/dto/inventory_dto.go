package dto

import "time"

// MovementRequest body para POST /api/movements/inbound y /outbound.
type MovementRequest struct {
	ProductID   string     `json:"product_id" validate:"required"`
	WarehouseID string     `json:"warehouse_id" validate:"required"`
	Quantity    int64      `json:"quantity" validate:"gte=1"`
	Reason      string     `json:"reason" validate:"max=500"`
	Reference   string     `json:"reference" validate:"max=100"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// TransferRequest body para POST /api/movements/transfer.
type TransferRequest struct {
	ProductID         string     `json:"product_id" validate:"required"`
	OriginWarehouseID string     `json:"origin_warehouse_id" validate:"required"`
	DestWarehouseID   string     `json:"dest_warehouse_id" validate:"required,nefield=OriginWarehouseID"`
	Quantity          int64      `json:"quantity" validate:"gte=1"`
	Reason            string     `json:"reason" validate:"max=500"`
	Reference         string     `json:"reference" validate:"max=100"`
	OccurredAt        *time.Time `json:"occurred_at,omitempty"`
}

// AdjustmentRequest body para POST /api/movements/adjustment. Direction indica si suma o resta.
type AdjustmentRequest struct {
	ProductID   string     `json:"product_id" validate:"required"`
	WarehouseID string     `json:"warehouse_id" validate:"required"`
	Direction   string     `json:"direction" validate:"required,oneof=INCREASE DECREASE"`
	Quantity    int64      `json:"quantity" validate:"gte=1"`
	Reason      string     `json:"reason" validate:"required,max=500"`
	Reference   string     `json:"reference" validate:"max=100"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// MovementQuery filtros de listados del kardex. Fechas en RFC3339 o yyyy-MM-dd.
type MovementQuery struct {
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" validate:"min=0,max=500"`
	Offset int    `query:"offset" validate:"min=0"`
}

// MovementResponse salida de una entrada del kardex.
type MovementResponse struct {
	ID                string    `json:"id"`
	Code              string    `json:"code"`
	ProductID         string    `json:"product_id"`
	OriginWarehouseID string    `json:"origin_warehouse_id,omitempty"`
	DestWarehouseID   string    `json:"dest_warehouse_id,omitempty"`
	Type              string    `json:"type"`
	Quantity          int64     `json:"quantity"`
	Reason            string    `json:"reason,omitempty"`
	Actor             string    `json:"actor"`
	Reference         string    `json:"reference,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// MovementListResponse lista de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockLocationResponse salida del stock de un producto en una bodega.
type StockLocationResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Stock       int64  `json:"stock"`
	MinStock    *int64 `json:"min_stock,omitempty"`
	Active      bool   `json:"active"`
}

// StockResponse stock puntual de una ubicación.
type StockResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Stock       int64  `json:"stock"`
}

// ProductStockResponse stock total del producto y su desglose por bodega.
type ProductStockResponse struct {
	ProductID string                  `json:"product_id"`
	Total     int64                   `json:"total"`
	Locations []StockLocationResponse `json:"locations"`
}

// SetLocationActiveRequest body para PATCH /api/stock/:product_id/:warehouse_id/active.
type SetLocationActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// SetLocationMinStockRequest body para PATCH .../min-stock. MinStock nulo quita el mínimo propio.
type SetLocationMinStockRequest struct {
	MinStock *int64 `json:"min_stock" validate:"omitempty,min=0"`
}

// DiscrepancyResponse ubicación cuyo stock no coincide con el kardex.
type DiscrepancyResponse struct {
	WarehouseID string `json:"warehouse_id"`
	Stored      int64  `json:"stored"`
	Replayed    int64  `json:"replayed"`
}

// ReconcileResponse resultado de reconstruir el stock desde el kardex.
type ReconcileResponse struct {
	ProductID     string                `json:"product_id"`
	Consistent    bool                  `json:"consistent"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
}
