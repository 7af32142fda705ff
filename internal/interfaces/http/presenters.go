package http

import (
	"github.com/jhoicas/inventario-ventas/internal/application/dto"
	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                m.ID,
		Code:              m.Code,
		ProductID:         m.ProductID,
		OriginWarehouseID: m.OriginWarehouseID,
		DestWarehouseID:   m.DestWarehouseID,
		Type:              string(m.Type),
		Quantity:          m.Quantity,
		Reason:            m.Reason,
		Actor:             m.Actor,
		Reference:         m.Reference,
		OccurredAt:        m.OccurredAt,
	}
}

func toMovementList(list []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toLocationResponse(l *entity.StockLocation) dto.StockLocationResponse {
	return dto.StockLocationResponse{
		ID:          l.ID,
		ProductID:   l.ProductID,
		WarehouseID: l.WarehouseID,
		Stock:       l.Stock,
		MinStock:    l.MinStock,
		Active:      l.Active,
	}
}

func toLocationList(list []*entity.StockLocation) []dto.StockLocationResponse {
	out := make([]dto.StockLocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLocationResponse(l))
	}
	return out
}

func toDiscrepancies(list []inventory.Discrepancy) []dto.DiscrepancyResponse {
	out := make([]dto.DiscrepancyResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.DiscrepancyResponse{WarehouseID: d.WarehouseID, Stored: d.Stored, Replayed: d.Replayed})
	}
	return out
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	out := &dto.SaleResponse{
		ID:                  s.ID,
		Code:                s.Code,
		Date:                s.Date,
		CustomerID:          s.CustomerID,
		CustomerName:        s.CustomerName,
		Currency:            s.Currency,
		ExchangeRate:        s.ExchangeRate,
		PaymentTerms:        string(s.PaymentTerms),
		Installments:        s.Installments,
		WarehouseID:         s.WarehouseID,
		Subtotal:            s.Subtotal,
		Tax:                 s.Tax,
		Total:               s.Total,
		Paid:                s.Paid(),
		Outstanding:         s.Outstanding,
		InstallmentAmount:   s.InstallmentAmount,
		Status:              string(s.Status),
		NeedsReconciliation: s.NeedsReconciliation,
		CreatedBy:           s.CreatedBy,
		Lines:               make([]dto.SaleLineResponse, 0, len(s.Lines)),
		Payments:            make([]dto.PaymentResponse, 0, len(s.Payments)),
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, dto.SaleLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			Subtotal:    l.Subtotal,
		})
	}
	for _, p := range s.Payments {
		out.Payments = append(out.Payments, dto.PaymentResponse{
			ID:                  p.ID,
			Amount:              p.Amount,
			Currency:            p.Currency,
			Method:              p.Method,
			Reference:           p.Reference,
			AccountID:           p.AccountID,
			NormalizedAmount:    p.NormalizedAmount,
			NeedsReconciliation: p.NeedsReconciliation,
			PaidAt:              p.PaidAt,
		})
	}
	return out
}

func toLineInputs(in []dto.SaleLineRequest) []sales.LineInput {
	out := make([]sales.LineInput, 0, len(in))
	for _, l := range in {
		li := sales.LineInput{
			ProductID:   l.ProductID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
			DiscountPct: l.DiscountPct,
			UnitPrice:   l.UnitPrice,
		}
		out = append(out, li)
	}
	return out
}

func toPaymentInput(p dto.PaymentRequest) sales.PaymentInput {
	return sales.PaymentInput{
		Amount:    p.Amount,
		Currency:  p.Currency,
		Method:    p.Method,
		Reference: p.Reference,
		AccountID: p.AccountID,
	}
}
