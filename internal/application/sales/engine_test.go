package sales_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/application/sales"
	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
	"github.com/jhoicas/inventario-ventas/internal/domain/settlement"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	prodA    = "prod-a" // precio 118.00
	prodB    = "prod-b" // precio 100.00
	whMain   = "bod-main"
	whNorth  = "bod-norte"
	customer = "cli-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

type fixture struct {
	store  *memory.Store
	svc    *inventory.Service
	ledger *inventory.Ledger
	engine *sales.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: prodA, Code: "A-01", Name: "Aceite", Price: dec("118.00"), Active: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: prodB, Code: "B-01", Name: "Azúcar", Price: dec("100.00"), Active: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "prod-off", Code: "X-01", Name: "Descontinuado", Price: dec("1.00"), Active: false}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: whMain, Name: "Principal", IsMain: true, Active: true}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: whNorth, Name: "Norte", Active: true}))
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: customer, Name: "Comercial Andina"}))

	tx := memory.NewTxRunner(store)
	svc := inventory.NewService(tx, repos, zerolog.Nop())
	ledger := inventory.NewLedger(tx, repos, svc, nil, zerolog.Nop())
	engine := sales.NewEngine(tx, repos, ledger, settlement.DefaultRules(), nil, zerolog.Nop())

	for _, p := range []string{prodA, prodB} {
		for _, wh := range []string{whMain, whNorth} {
			_, err := ledger.RecordInbound(ctx, wh, inventory.MovementInput{ProductID: p, Quantity: 10, Actor: "seed"})
			require.NoError(t, err)
		}
	}
	return &fixture{store: store, svc: svc, ledger: ledger, engine: engine}
}

func (f *fixture) stock(t *testing.T, productID, wh string) int64 {
	t.Helper()
	n, err := f.svc.GetStock(context.Background(), productID, wh)
	require.NoError(t, err)
	return n
}

func cashOrder(paid string, lines ...sales.LineInput) sales.CreateOrderInput {
	in := sales.CreateOrderInput{
		CustomerID:   customer,
		Currency:     "PEN",
		PaymentTerms: entity.TermsCash,
		Lines:        lines,
		Actor:        "cajero",
	}
	if paid != "" {
		in.Payments = []sales.PaymentInput{{Amount: dec(paid), Currency: "PEN", Method: "EFECTIVO"}}
	}
	return in
}

// ──────────────────────────────────────────────────────────────────────────────
// Contado
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_CalculaTotalesConImpuestoIncluido(t *testing.T) {
	f := newFixture(t)

	sale, err := f.engine.CreateOrder(context.Background(), cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1}))

	require.NoError(t, err)
	assert.Equal(t, entity.SaleDraft, sale.Status)
	assert.Regexp(t, `^VEN-\d{8}-0001$`, sale.Code)
	assert.Equal(t, "Comercial Andina", sale.CustomerName)
	assert.True(t, sale.Total.Equal(dec("118.00")))
	assert.True(t, sale.Subtotal.Equal(dec("100.00")))
	assert.True(t, sale.Tax.Equal(dec("18.00")))
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, whMain, sale.Lines[0].WarehouseID, "sin bodega se usa la principal")
	assert.True(t, sale.Lines[0].UnitPrice.Equal(dec("118.00")), "sin precio toma el del producto")
	assert.Equal(t, int64(10), f.stock(t, prodA, whMain), "un borrador no toca stock")
}

func TestFinalizeOrder_ContadoCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, cashOrder("118.00", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)

	done, err := f.engine.FinalizeOrder(ctx, sale.ID, "cajero")

	require.NoError(t, err)
	assert.Equal(t, entity.SaleCompleted, done.Status)
	assert.True(t, done.Outstanding.IsZero())
	assert.Equal(t, int64(9), f.stock(t, prodA, whMain))
	movs, err := f.ledger.ListByReference(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementOutbound, movs[0].Type)
	assert.Equal(t, "cajero", movs[0].Actor)
}

func TestFinalizeOrder_ContadoDentroDeTolerancia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, cashOrder("117.90", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)

	done, err := f.engine.FinalizeOrder(ctx, sale.ID, "cajero")

	require.NoError(t, err)
	assert.Equal(t, entity.SaleCompleted, done.Status)
}

func TestFinalizeOrder_ContadoIncompletoNoTocaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, cashOrder("100.00", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")

	var ipe *domain.IncompletePaymentError
	require.ErrorAs(t, err, &ipe)
	assert.True(t, ipe.Total.Equal(dec("118.00")))
	assert.True(t, ipe.Paid.Equal(dec("100.00")))
	assert.Equal(t, int64(10), f.stock(t, prodA, whMain))
	again, err := f.engine.GetOrder(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleDraft, again.Status)
}

// Si una línea no tiene stock, ninguna línea se descuenta.
func TestFinalizeOrder_VariasLineasTodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashOrder("",
		sales.LineInput{ProductID: prodA, Quantity: 2},
		sales.LineInput{ProductID: prodB, Quantity: 50, WarehouseID: whNorth},
	)
	in.PaymentTerms = entity.TermsCredit
	sale, err := f.engine.CreateOrder(ctx, in)
	require.NoError(t, err)

	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, whNorth, ise.WarehouseID)
	assert.Equal(t, int64(10), f.stock(t, prodA, whMain))
	assert.Equal(t, int64(10), f.stock(t, prodB, whNorth))
	movs, err := f.ledger.ListByReference(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Crédito
// ──────────────────────────────────────────────────────────────────────────────

func creditOrder(installments int) sales.CreateOrderInput {
	return sales.CreateOrderInput{
		CustomerID:   customer,
		Currency:     "PEN",
		PaymentTerms: entity.TermsCredit,
		Installments: installments,
		Lines:        []sales.LineInput{{ProductID: prodB, Quantity: 3}},
		Actor:        "vendedor",
	}
}

func TestFinalizeOrder_CreditoTresCuotas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, creditOrder(3))
	require.NoError(t, err)

	done, err := f.engine.FinalizeOrder(ctx, sale.ID, "vendedor")

	require.NoError(t, err)
	assert.Equal(t, entity.SalePendingPayment, done.Status)
	assert.True(t, done.Total.Equal(dec("300.00")))
	assert.True(t, done.Outstanding.Equal(dec("300.00")))
	assert.True(t, done.InstallmentAmount.Equal(dec("100.00")))
	assert.Equal(t, int64(7), f.stock(t, prodB, whMain))
}

func TestRegisterAmortization_HastaCompletar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, creditOrder(3))
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "vendedor")
	require.NoError(t, err)

	pay := sales.PaymentInput{Amount: dec("100.00"), Currency: "PEN", Method: "TRANSFERENCIA"}
	s1, err := f.engine.RegisterAmortization(ctx, sale.ID, pay, "caja")
	require.NoError(t, err)
	assert.True(t, s1.Outstanding.Equal(dec("200.00")))
	assert.Equal(t, entity.SalePendingPayment, s1.Status)

	// Un pago mayor al saldo deja el saldo en cero, nunca negativo.
	big := sales.PaymentInput{Amount: dec("250.00"), Currency: "PEN", Method: "TRANSFERENCIA"}
	s2, err := f.engine.RegisterAmortization(ctx, sale.ID, big, "caja")
	require.NoError(t, err)
	assert.True(t, s2.Outstanding.IsZero())
	assert.Equal(t, entity.SaleCompleted, s2.Status)
	assert.Len(t, s2.Payments, 2)

	_, err = f.engine.RegisterAmortization(ctx, sale.ID, pay, "caja")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "una venta completada no admite pagos")
}

func TestRegisterAmortization_USDaPEN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := creditOrder(1)
	in.ExchangeRate = dec("3.75")
	in.Lines = []sales.LineInput{{ProductID: prodB, Quantity: 1, UnitPrice: ptr(dec("375.00"))}}
	sale, err := f.engine.CreateOrder(ctx, in)
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "vendedor")
	require.NoError(t, err)

	done, err := f.engine.RegisterAmortization(ctx, sale.ID, sales.PaymentInput{Amount: dec("100.00"), Currency: "USD"}, "caja")

	require.NoError(t, err)
	require.Len(t, done.Payments, 1)
	assert.True(t, done.Payments[0].NormalizedAmount.Equal(dec("375.00")))
	assert.Equal(t, entity.SaleCompleted, done.Status)
	assert.False(t, done.NeedsReconciliation)
}

func TestRegisterAmortization_TasaCeroMarcaConciliacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, creditOrder(1))
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "vendedor")
	require.NoError(t, err)

	done, err := f.engine.RegisterAmortization(ctx, sale.ID, sales.PaymentInput{Amount: dec("50.00"), Currency: "USD"}, "caja")

	require.NoError(t, err)
	assert.True(t, done.NeedsReconciliation)
	assert.True(t, done.Payments[0].NeedsReconciliation)
	assert.True(t, done.Payments[0].NormalizedAmount.Equal(dec("50.00")), "sin tasa el monto pasa sin cambio")
	assert.True(t, done.Outstanding.Equal(dec("250.00")))
}

func TestRegisterAmortization_MontoNoPositivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, creditOrder(1))
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "vendedor")
	require.NoError(t, err)

	_, err = f.engine.RegisterAmortization(ctx, sale.ID, sales.PaymentInput{Amount: decimal.Zero}, "caja")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecomputeBalance_CompletaVentaCubierta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := creditOrder(2)
	in.Payments = []sales.PaymentInput{{Amount: dec("300.00"), Currency: "PEN"}}
	sale, err := f.engine.CreateOrder(ctx, in)
	require.NoError(t, err)
	assert.True(t, sale.Outstanding.IsZero())

	done, err := f.engine.FinalizeOrder(ctx, sale.ID, "vendedor")
	require.NoError(t, err)
	assert.Equal(t, entity.SaleCompleted, done.Status, "crédito pagado por adelantado se completa al confirmar")

	again, err := f.engine.RecomputeBalance(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleCompleted, again.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación y transiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelOrder_DevuelveStockConEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashOrder("590.00", sales.LineInput{ProductID: prodA, Quantity: 5})
	sale, err := f.engine.CreateOrder(ctx, in)
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")
	require.NoError(t, err)
	require.Equal(t, int64(5), f.stock(t, prodA, whMain))

	res, err := f.engine.CancelOrder(ctx, sale.ID, "supervisor", "cliente desiste")

	require.NoError(t, err)
	assert.False(t, res.Deleted)
	assert.Equal(t, entity.SaleCancelled, res.Sale.Status)
	assert.Equal(t, int64(10), f.stock(t, prodA, whMain))
	require.Len(t, res.Movements, 1)
	assert.Equal(t, entity.MovementInbound, res.Movements[0].Type)
	assert.Equal(t, int64(5), res.Movements[0].Quantity)
	assert.Equal(t, sale.ID, res.Movements[0].Reference)

	_, err = f.engine.CancelOrder(ctx, sale.ID, "supervisor", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestCancelOrder_BorradorSeElimina(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)

	res, err := f.engine.CancelOrder(ctx, sale.ID, "cajero", "")

	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Empty(t, res.Movements)
	_, err = f.engine.GetOrder(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(10), f.stock(t, prodA, whMain))
}

func TestFinalizeOrder_DosVecesEsTransicionInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, cashOrder("118.00", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")
	require.NoError(t, err)

	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")

	var ste *domain.StateTransitionError
	require.ErrorAs(t, err, &ste)
	assert.Equal(t, string(entity.SaleCompleted), ste.From)
	assert.Equal(t, int64(9), f.stock(t, prodA, whMain))
}

func TestFinalizeOrder_VentaInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.FinalizeOrder(context.Background(), "no-existe", "cajero")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición de borradores y validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestReplaceDraftLines_RecalculaSinTocarStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)

	upd, err := f.engine.ReplaceDraftLines(ctx, sale.ID, []sales.LineInput{
		{ProductID: prodB, Quantity: 2, DiscountPct: dec("10"), WarehouseID: whNorth},
	})

	require.NoError(t, err)
	require.Len(t, upd.Lines, 1)
	assert.True(t, upd.Total.Equal(dec("180.00")))
	assert.True(t, upd.Subtotal.Add(upd.Tax).Equal(upd.Total))
	assert.Equal(t, int64(10), f.stock(t, prodB, whNorth))

	stored, err := f.engine.GetOrder(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, prodB, stored.Lines[0].ProductID)

	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")
	require.Error(t, err, "contado sin pagos no se puede confirmar")
	_, err = f.engine.CancelOrder(ctx, sale.ID, "cajero", "")
	require.NoError(t, err)
	_, err = f.engine.ReplaceDraftLines(ctx, sale.ID, []sales.LineInput{{ProductID: prodA, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplaceDraftLines_VentaConfirmadaNoSeEdita(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.engine.CreateOrder(ctx, cashOrder("118.00", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, sale.ID, "cajero")
	require.NoError(t, err)

	_, err = f.engine.ReplaceDraftLines(ctx, sale.ID, []sales.LineInput{{ProductID: prodA, Quantity: 2}})

	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestCreateOrder_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CreateOrder(ctx, cashOrder(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = f.engine.CreateOrder(ctx, cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 0}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = f.engine.CreateOrder(ctx, cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1, DiscountPct: dec("120")}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "descuento fuera de rango")

	_, err = f.engine.CreateOrder(ctx, cashOrder("", sales.LineInput{ProductID: "no-existe", Quantity: 1}))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.CreateOrder(ctx, cashOrder("", sales.LineInput{ProductID: "prod-off", Quantity: 1}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "producto inactivo")

	bad := cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1})
	bad.Currency = "EUR"
	_, err = f.engine.CreateOrder(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	unknownCustomer := cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1})
	unknownCustomer.CustomerID = "cli-x"
	_, err = f.engine.CreateOrder(ctx, unknownCustomer)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrder_BodegaDeVentaPorDefecto(t *testing.T) {
	f := newFixture(t)
	in := cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1}, sales.LineInput{ProductID: prodB, Quantity: 1, WarehouseID: whMain})
	in.WarehouseID = whNorth

	sale, err := f.engine.CreateOrder(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, whNorth, sale.Lines[0].WarehouseID)
	assert.Equal(t, whMain, sale.Lines[1].WarehouseID)
}

func TestCreateOrder_VentaEnUSDConviertePrecioDelProducto(t *testing.T) {
	f := newFixture(t)
	in := cashOrder("", sales.LineInput{ProductID: prodB, Quantity: 1})
	in.Currency = "USD"
	in.ExchangeRate = dec("4")

	sale, err := f.engine.CreateOrder(context.Background(), in)

	require.NoError(t, err)
	assert.True(t, sale.Lines[0].UnitPrice.Equal(dec("25.00")))
	assert.False(t, sale.NeedsReconciliation)
}

func TestListOrders_FiltraPorEstadoYCliente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1, err := f.engine.CreateOrder(ctx, cashOrder("118.00", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)
	_, err = f.engine.FinalizeOrder(ctx, s1.ID, "cajero")
	require.NoError(t, err)
	_, err = f.engine.CreateOrder(ctx, cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 1}))
	require.NoError(t, err)

	completed, err := f.engine.ListOrders(ctx, repository.SaleFilter{Status: entity.SaleCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, s1.ID, completed[0].ID)

	all, err := f.engine.ListOrders(ctx, repository.SaleFilter{CustomerID: customer})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.NotEqual(t, all[0].Code, all[1].Code)
}

func TestCreateOrder_PrecioCeroExplicitoEsLineaGratuita(t *testing.T) {
	f := newFixture(t)
	in := cashOrder("", sales.LineInput{ProductID: prodA, Quantity: 2, UnitPrice: ptr(decimal.Zero)})

	sale, err := f.engine.CreateOrder(context.Background(), in)

	require.NoError(t, err)
	assert.True(t, sale.Lines[0].UnitPrice.IsZero())
	assert.True(t, sale.Total.IsZero())
}

func TestCreateOrder_MonedaSecundariaExigeTipoDeCambio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := cashOrder("118.00", sales.LineInput{ProductID: prodA, Quantity: 1})
	in.Currency = "USD"

	_, err := f.engine.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.ExchangeRate = dec("-1")
	_, err = f.engine.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := f.engine.ListOrders(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, int64(10), f.stock(t, prodA, whMain))
}

func TestCreateOrder_LineasConBodegaNoNecesitanPrincipal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: prodA, Code: "A-01", Name: "Aceite", Price: dec("118.00"), Active: true}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: whNorth, Name: "Norte", Active: true}))
	tx := memory.NewTxRunner(store)
	svc := inventory.NewService(tx, repos, zerolog.Nop())
	engine := sales.NewEngine(tx, repos, inventory.NewLedger(tx, repos, svc, nil, zerolog.Nop()), settlement.DefaultRules(), nil, zerolog.Nop())

	sale, err := engine.CreateOrder(ctx, sales.CreateOrderInput{Lines: []sales.LineInput{{ProductID: prodA, WarehouseID: whNorth, Quantity: 1}}})

	require.NoError(t, err)
	assert.Equal(t, whNorth, sale.Lines[0].WarehouseID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de bloqueo y métricas
// ──────────────────────────────────────────────────────────────────────────────

// recordingLedger anota bodega/producto de cada movimiento antes de delegar.
type recordingLedger struct {
	sales.StockLedger
	calls []string
}

func (r *recordingLedger) RecordOutboundInTx(ctx context.Context, tx repository.Repos, wh string, in inventory.MovementInput) (*entity.Movement, error) {
	r.calls = append(r.calls, wh+"/"+in.ProductID)
	return r.StockLedger.RecordOutboundInTx(ctx, tx, wh, in)
}

func (r *recordingLedger) RecordInboundInTx(ctx context.Context, tx repository.Repos, wh string, in inventory.MovementInput) (*entity.Movement, error) {
	r.calls = append(r.calls, wh+"/"+in.ProductID)
	return r.StockLedger.RecordInboundInTx(ctx, tx, wh, in)
}

type countingMetrics struct {
	payments    int
	transitions int
}

func (m *countingMetrics) SaleTransition(entity.SaleStatus, entity.SaleStatus) { m.transitions++ }
func (m *countingMetrics) PaymentRecorded(string, bool)                        { m.payments++ }

func (f *fixture) engineWith(ledger sales.StockLedger, m sales.Metrics) *sales.Engine {
	tx := memory.NewTxRunner(f.store)
	return sales.NewEngine(tx, f.store.Repos(), ledger, settlement.DefaultRules(), m, zerolog.Nop())
}

func TestFinalizeYCancel_MovimientosEnOrdenBodegaProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := &recordingLedger{StockLedger: f.ledger}
	engine := f.engineWith(rec, nil)
	in := creditOrder(1)
	in.Lines = []sales.LineInput{
		{ProductID: prodB, WarehouseID: whNorth, Quantity: 1},
		{ProductID: prodA, WarehouseID: whNorth, Quantity: 1},
		{ProductID: prodB, WarehouseID: whMain, Quantity: 1},
	}
	sale, err := engine.CreateOrder(ctx, in)
	require.NoError(t, err)

	_, err = engine.FinalizeOrder(ctx, sale.ID, "vendedor")
	require.NoError(t, err)
	want := []string{whMain + "/" + prodB, whNorth + "/" + prodA, whNorth + "/" + prodB}
	assert.Equal(t, want, rec.calls)

	rec.calls = nil
	_, err = engine.CancelOrder(ctx, sale.ID, "supervisor", "")
	require.NoError(t, err)
	assert.Equal(t, want, rec.calls)

	got, err := engine.GetOrder(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, prodB, got.Lines[0].ProductID, "la venta conserva el orden de sus líneas")
	assert.Equal(t, whNorth, got.Lines[0].WarehouseID)
}

func TestMetrics_PagosSoloTrasConfirmar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := &countingMetrics{}
	engine := f.engineWith(f.ledger, m)

	bad := cashOrder("50.00", sales.LineInput{ProductID: prodA, Quantity: 1})
	bad.Payments = append(bad.Payments, sales.PaymentInput{Amount: decimal.Zero, Currency: "PEN"})
	_, err := engine.CreateOrder(ctx, bad)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, m.payments, "una venta rechazada no registra pagos")

	sale, err := engine.CreateOrder(ctx, creditOrder(1))
	require.NoError(t, err)
	_, err = engine.FinalizeOrder(ctx, sale.ID, "vendedor")
	require.NoError(t, err)

	_, err = engine.RegisterAmortization(ctx, sale.ID, sales.PaymentInput{Amount: decimal.Zero}, "caja")
	require.Error(t, err)
	assert.Equal(t, 0, m.payments)

	_, err = engine.RegisterAmortization(ctx, sale.ID, sales.PaymentInput{Amount: dec("100.00"), Currency: "PEN"}, "caja")
	require.NoError(t, err)
	assert.Equal(t, 1, m.payments)
}
