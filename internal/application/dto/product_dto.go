package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code       string          `json:"code" validate:"required,min=1,max=100"`
	Name       string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID string          `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	MinStock   int64           `json:"min_stock" validate:"min=0"`
}

// ProductResponse salida de un producto. CurrentStock es la suma de sus ubicaciones activas.
type ProductResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CategoryID   string          `json:"category_id,omitempty"`
	Price        decimal.Decimal `json:"price"`
	MinStock     int64           `json:"min_stock"`
	CurrentStock int64           `json:"current_stock"`
	BelowMinimum bool            `json:"below_minimum"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
