package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	prodID = "prod-1"
	whA    = "bod-a"
	whB    = "bod-b"
	whOff  = "bod-inactiva"
)

type fixture struct {
	store  *memory.Store
	tx     *memory.TxRunner
	svc    *inventory.Service
	ledger *inventory.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: prodID, Code: "P001", Name: "Arroz", Price: decimal.NewFromInt(10), MinStock: 5, Active: true}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: whA, Name: "Central", IsMain: true, Active: true}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: whB, Name: "Norte", Active: true}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: whOff, Name: "Cerrada", Active: false}))

	tx := memory.NewTxRunner(store)
	svc := inventory.NewService(tx, repos, zerolog.Nop())
	ledger := inventory.NewLedger(tx, repos, svc, nil, zerolog.Nop())
	return &fixture{store: store, tx: tx, svc: svc, ledger: ledger}
}

func in(qty int64) inventory.MovementInput {
	return inventory.MovementInput{ProductID: prodID, Quantity: qty, Actor: "tester", Reason: "prueba"}
}

func (f *fixture) stock(t *testing.T, wh string) int64 {
	t.Helper()
	n, err := f.svc.GetStock(context.Background(), prodID, wh)
	require.NoError(t, err)
	return n
}

func (f *fixture) productStock(t *testing.T) int64 {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(context.Background(), prodID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordInbound_CreaUbicacionYRecalculaProducto(t *testing.T) {
	f := newFixture(t)

	m, err := f.ledger.RecordInbound(context.Background(), whA, in(10))

	require.NoError(t, err)
	assert.Equal(t, entity.MovementInbound, m.Type)
	assert.Equal(t, whA, m.DestWarehouseID)
	assert.Empty(t, m.OriginWarehouseID)
	assert.Equal(t, int64(10), f.stock(t, whA))
	assert.Equal(t, int64(10), f.productStock(t))
}

func TestRecordOutbound_SinStockNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.RecordInbound(ctx, whA, in(3))
	require.NoError(t, err)

	_, err = f.ledger.RecordOutbound(ctx, whA, in(5))

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(5), ise.Requested)
	assert.Equal(t, int64(3), ise.Available)
	assert.Equal(t, int64(3), f.stock(t, whA))
	movs, err := f.ledger.ListByProduct(ctx, prodID, inventory.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, movs, 1, "la salida rechazada no deja entrada en el kardex")
}

func TestRecordOutbound_BodegaSinUbicacionEsStockInsuficiente(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordOutbound(context.Background(), whB, in(1))

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRecord_CantidadNoPositivaEsInvalida(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordInbound(context.Background(), whA, in(0))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	_, err = f.ledger.RecordOutbound(context.Background(), whA, in(-2))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

func TestRecord_BodegaInexistenteOInactiva(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordInbound(context.Background(), "no-existe", in(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledger.RecordInbound(context.Background(), whOff, in(1))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

func TestRecordTransfer_Atomico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.RecordInbound(ctx, whA, in(10))
	require.NoError(t, err)

	m, err := f.ledger.RecordTransfer(ctx, whA, whB, in(4))
	require.NoError(t, err)
	assert.Equal(t, whA, m.OriginWarehouseID)
	assert.Equal(t, whB, m.DestWarehouseID)
	assert.Equal(t, int64(6), f.stock(t, whA))
	assert.Equal(t, int64(4), f.stock(t, whB))
	assert.Equal(t, int64(10), f.productStock(t), "un traslado no cambia el total")

	_, err = f.ledger.RecordTransfer(ctx, whA, whB, in(7))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(6), f.stock(t, whA))
	assert.Equal(t, int64(4), f.stock(t, whB))
}

func TestRecordTransfer_MismaBodegaEsInvalido(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.RecordTransfer(context.Background(), whA, whA, in(1))

	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

func TestRecordAdjustment_DireccionExplicita(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	up, err := f.ledger.RecordAdjustment(ctx, whA, inventory.AdjustmentIncrease, in(8))
	require.NoError(t, err)
	assert.Equal(t, whA, up.DestWarehouseID)

	down, err := f.ledger.RecordAdjustment(ctx, whA, inventory.AdjustmentDecrease, in(3))
	require.NoError(t, err)
	assert.Equal(t, whA, down.OriginWarehouseID)
	assert.Equal(t, int64(5), f.stock(t, whA))

	_, err = f.ledger.RecordAdjustment(ctx, whA, inventory.AdjustmentDecrease, in(6))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.ledger.RecordAdjustment(ctx, whA, "SIDEWAYS", in(1))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

// ──────────────────────────────────────────────────────────────────────────────
// Códigos y consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestCodigo_SecuenciaDiaria(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local)
	f.ledger.WithClock(func() time.Time { return day })
	ctx := context.Background()

	m1, err := f.ledger.RecordInbound(ctx, whA, in(1))
	require.NoError(t, err)
	m2, err := f.ledger.RecordInbound(ctx, whA, in(1))
	require.NoError(t, err)
	f.ledger.WithClock(func() time.Time { return day.AddDate(0, 0, 1) })
	m3, err := f.ledger.RecordInbound(ctx, whA, in(1))
	require.NoError(t, err)

	assert.Equal(t, "MOV-20240502-0001", m1.Code)
	assert.Equal(t, "MOV-20240502-0002", m2.Code)
	assert.Equal(t, "MOV-20240503-0001", m3.Code)
}

func TestListados_OrdenDescendente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		mi := in(1)
		mi.OccurredAt = base.Add(time.Duration(i) * time.Hour)
		_, err := f.ledger.RecordInbound(ctx, whA, mi)
		require.NoError(t, err)
	}
	tr := in(1)
	tr.OccurredAt = base.Add(5 * time.Hour)
	_, err := f.ledger.RecordTransfer(ctx, whA, whB, tr)
	require.NoError(t, err)

	byProduct, err := f.ledger.ListByProduct(ctx, prodID, inventory.ListQuery{})
	require.NoError(t, err)
	require.Len(t, byProduct, 4)
	for i := 1; i < len(byProduct); i++ {
		assert.False(t, byProduct[i].OccurredAt.After(byProduct[i-1].OccurredAt))
	}

	byB, err := f.ledger.ListByWarehouse(ctx, whB, inventory.ListQuery{})
	require.NoError(t, err)
	require.Len(t, byB, 1, "el traslado aparece en la bodega destino")

	byType, err := f.ledger.ListByType(ctx, entity.MovementInbound, inventory.ListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, byType, 2)
	assert.Equal(t, base.Add(2*time.Hour), byType[0].OccurredAt)

	from := base.Add(90 * time.Minute)
	ranged, err := f.ledger.ListByProduct(ctx, prodID, inventory.ListQuery{From: &from})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	_, err = f.ledger.ListByType(ctx, "OTRO", inventory.ListQuery{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

// Dos salidas concurrentes de 6 sobre 10 unidades: exactamente una gana.
func TestConcurrencia_DosSalidasSobreMismaUbicacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.RecordInbound(ctx, whA, in(10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.RecordOutbound(ctx, whA, in(6))
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, e := range errs {
		switch {
		case e == nil:
			ok++
		case errors.Is(e, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(4), f.stock(t, whA))
}

func TestReconcile_KardexReproduceUbicaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.RecordInbound(ctx, whA, in(12))
	require.NoError(t, err)
	_, err = f.ledger.RecordTransfer(ctx, whA, whB, in(5))
	require.NoError(t, err)
	_, err = f.ledger.RecordOutbound(ctx, whB, in(2))
	require.NoError(t, err)
	_, err = f.ledger.RecordAdjustment(ctx, whA, inventory.AdjustmentDecrease, in(1))
	require.NoError(t, err)

	diffs, err := f.ledger.Reconcile(ctx, prodID)

	require.NoError(t, err)
	assert.Empty(t, diffs)
	total, err := f.svc.TotalStock(ctx, prodID)
	require.NoError(t, err)
	assert.Equal(t, f.productStock(t), total)
	assert.Equal(t, int64(9), total)
}

func TestReconcile_DetectaStockFueraDelKardex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Repos().Locations.Create(ctx, &entity.StockLocation{ProductID: prodID, WarehouseID: whB, Stock: 7, Active: true}))

	diffs, err := f.ledger.Reconcile(ctx, prodID)

	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, inventory.Discrepancy{WarehouseID: whB, Stored: 7, Replayed: 0}, diffs[0])
}
