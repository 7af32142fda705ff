package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una venta.
type ReceiptUseCase struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(sales repository.SaleRepository, products repository.ProductRepository, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{sales: sales, products: products, generator: generator}
}

// Download devuelve el PDF y el nombre de archivo. Un borrador no tiene comprobante.
//
// Retorna:
//   - domain.ErrNotFound     si la venta no existe.
//   - domain.ErrInvalidInput si la venta sigue en DRAFT.
func (uc *ReceiptUseCase) Download(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.NewNotFound("venta", saleID)
	}
	if sale.Status == entity.SaleDraft {
		return nil, "", domain.InvalidInput("la venta está en borrador, confírmela antes de emitir el comprobante")
	}

	lines := make([]ReceiptLine, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		rl := ReceiptLine{SaleLine: l, ProductCode: l.ProductID, ProductName: "Producto " + l.ProductID}
		if p, pErr := uc.products.GetByID(ctx, l.ProductID); pErr == nil && p != nil {
			rl.ProductCode, rl.ProductName = p.Code, p.Name
		}
		lines = append(lines, rl)
	}

	pdf, err := uc.generator.GenerateSaleReceipt(ctx, sale, lines)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("venta_%s.pdf", sale.Code), nil
}
