package sales_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

type fakeGenerator struct {
	lines []sales.ReceiptLine
}

func (g *fakeGenerator) GenerateSaleReceipt(_ context.Context, _ *entity.Sale, lines []sales.ReceiptLine) ([]byte, error) {
	g.lines = lines
	return []byte("%PDF-fake"), nil
}

func TestReceipt_BorradorNoTieneComprobante(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := &fakeGenerator{}
	uc := sales.NewReceiptUseCase(f.store.Repos().Sales, f.store.Repos().Products, gen)
	sale, err := f.engine.CreateOrder(ctx, cashOrder("118.00", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)

	_, _, err = uc.Download(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")
	require.NoError(t, err)
	pdf, name, err := uc.Download(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "venta_"+sale.Code+".pdf", name)
	assert.NotEmpty(t, pdf)
	require.Len(t, gen.lines, 1)
	assert.Equal(t, "Aceite", gen.lines[0].ProductName)

	_, _, err = uc.Download(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
