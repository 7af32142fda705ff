package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
	"github.com/jhoicas/inventario-ventas/internal/domain/settlement"
)

const (
	maxCodeAttempts     = 3
	walkInCustomerName  = "CLIENTES VARIOS"
	actionRecompute     = "recompute"
	defaultInstallments = 1
)

var hundred = decimal.NewFromInt(100)

// LineInput describe una línea de venta. UnitPrice nil toma el precio del producto;
// WarehouseID vacío toma la bodega de la venta o la principal.
type LineInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	UnitPrice   *decimal.Decimal
	DiscountPct decimal.Decimal
}

// PaymentInput describe un pago en cualquier moneda.
type PaymentInput struct {
	Amount    decimal.Decimal
	Currency  string
	Method    string
	Reference string
	AccountID string
	PaidAt    time.Time
}

// CreateOrderInput son los datos de una venta en borrador.
type CreateOrderInput struct {
	CustomerID   string
	Date         time.Time
	Currency     string
	ExchangeRate decimal.Decimal
	PaymentTerms entity.PaymentTerms
	Installments int
	WarehouseID  string
	Lines        []LineInput
	Payments     []PaymentInput
	Actor        string
}

// CancelResult informa cómo terminó una anulación: un borrador se borra, lo demás se revierte.
type CancelResult struct {
	Sale      *entity.Sale
	Deleted   bool
	Movements []*entity.Movement
}

// Engine es el motor de liquidación: ciclo de vida de la venta, pagos y saldo.
// Nunca toca el stock directamente; lo hace a través del kardex dentro de su transacción.
type Engine struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	ledger   StockLedger
	rules    settlement.Rules
	metrics  Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// NewEngine construye el motor. metrics puede ser nil.
func NewEngine(txRunner repository.TxRunner, repos repository.Repos, ledger StockLedger, rules settlement.Rules, metrics Metrics, log zerolog.Logger) *Engine {
	if metrics == nil {
		metrics = NopMetrics
	}
	return &Engine{
		txRunner: txRunner,
		repos:    repos,
		ledger:   ledger,
		rules:    rules,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj usado para fechas y códigos.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Rules devuelve las reglas de liquidación vigentes.
func (e *Engine) Rules() settlement.Rules { return e.rules }

// ──────────────────────────────────────────────────────────────────────────────
// Creación y edición de borradores
// ──────────────────────────────────────────────────────────────────────────────

// CreateOrder valida y guarda una venta en DRAFT. No toca stock.
func (e *Engine) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.Sale, error) {
	if len(in.Lines) == 0 {
		return nil, domain.InvalidInput("la venta necesita al menos una línea")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = e.rules.BaseCurrency
	}
	if currency != e.rules.BaseCurrency && currency != e.rules.SecondaryCurrency {
		return nil, domain.InvalidInput(fmt.Sprintf("moneda no soportada %q", in.Currency))
	}
	if in.ExchangeRate.Sign() < 0 {
		return nil, domain.InvalidInput("el tipo de cambio no puede ser negativo")
	}
	if currency != e.rules.BaseCurrency && in.ExchangeRate.Sign() == 0 {
		return nil, domain.InvalidInput(fmt.Sprintf("una venta en %s necesita tipo de cambio", currency))
	}
	terms := in.PaymentTerms
	if terms == "" {
		terms = entity.TermsCash
	}
	if terms != entity.TermsCash && terms != entity.TermsCredit {
		return nil, domain.InvalidInput(fmt.Sprintf("condición de pago desconocida %q", in.PaymentTerms))
	}
	installments := in.Installments
	if installments < defaultInstallments || terms == entity.TermsCash {
		installments = defaultInstallments
	}
	date := in.Date
	if date.IsZero() {
		date = e.now()
	}

	sale := &entity.Sale{
		Date:         date,
		CustomerID:   in.CustomerID,
		CustomerName: walkInCustomerName,
		Currency:     currency,
		ExchangeRate: in.ExchangeRate,
		PaymentTerms: terms,
		Installments: installments,
		WarehouseID:  in.WarehouseID,
		Status:       entity.SaleDraft,
		CreatedBy:    in.Actor,
	}

	md, err := e.lookup(ctx, in.CustomerID, sale.WarehouseID, in.Lines)
	if err != nil {
		return nil, err
	}
	if md.customer != nil {
		sale.CustomerName = md.customer.Name
	}
	lines, flagged, err := e.resolveLines(sale, in.Lines, md)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	sale.NeedsReconciliation = flagged
	e.applyTotals(sale)

	for _, p := range in.Payments {
		pay, err := e.buildPayment(sale, p)
		if err != nil {
			return nil, err
		}
		sale.Payments = append(sale.Payments, *pay)
	}
	sale.Outstanding = settlement.Outstanding(sale.Total, sale.Paid())

	err = e.txRunner.Run(ctx, func(tx repository.Repos) error {
		return e.insertWithCode(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}
	e.recordPayments(sale.Payments...)
	e.log.Info().Str("sale_id", sale.ID).Str("code", sale.Code).Str("total", sale.Total.StringFixed(2)).Msg("venta creada en borrador")
	return sale, nil
}

func (e *Engine) insertWithCode(ctx context.Context, tx repository.Repos, sale *entity.Sale) error {
	day := e.now()
	key := entity.DayKey(entity.SaleCodePrefix, day)
	if err := tx.Sales.LockDay(ctx, key); err != nil {
		return fmt.Errorf("candado de secuencia: %w", err)
	}
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		last, err := tx.Sales.LastSequence(ctx, key)
		if err != nil {
			return fmt.Errorf("leer secuencia de ventas: %w", err)
		}
		sale.Code = entity.DailyCode(entity.SaleCodePrefix, day, last+1)
		err = tx.Sales.Create(ctx, sale)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) && !errors.Is(err, domain.ErrDuplicateCode) {
			return fmt.Errorf("guardar venta: %w", err)
		}
		e.log.Warn().Str("code", sale.Code).Int("attempt", attempt).Msg("código de venta repetido, reintentando")
	}
	return fmt.Errorf("%w: %d intentos para %s", domain.ErrDuplicateCode, maxCodeAttempts, key)
}

// ReplaceDraftLines reemplaza las líneas de una venta en DRAFT y recalcula totales. No toca stock.
func (e *Engine) ReplaceDraftLines(ctx context.Context, saleID string, lines []LineInput) (*entity.Sale, error) {
	if len(lines) == 0 {
		return nil, domain.InvalidInput("la venta necesita al menos una línea")
	}
	current, err := e.GetOrder(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := current.Require(entity.SaleActionEdit); err != nil {
		return nil, err
	}
	md, err := e.lookup(ctx, "", current.WarehouseID, lines)
	if err != nil {
		return nil, err
	}

	var out *entity.Sale
	err = e.txRunner.Run(ctx, func(tx repository.Repos) error {
		sale, err := e.lockSale(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if err := sale.Require(entity.SaleActionEdit); err != nil {
			return err
		}
		resolved, flagged, err := e.resolveLines(sale, lines, md)
		if err != nil {
			return err
		}
		if err := tx.Sales.ReplaceLines(ctx, sale.ID, resolved); err != nil {
			return fmt.Errorf("reemplazar líneas: %w", err)
		}
		sale.Lines = resolved
		sale.NeedsReconciliation = sale.NeedsReconciliation || flagged
		e.applyTotals(sale)
		sale.Outstanding = settlement.Outstanding(sale.Total, sale.Paid())
		if err := tx.Sales.UpdateHeader(ctx, sale); err != nil {
			return fmt.Errorf("actualizar venta: %w", err)
		}
		out = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// masterData son los datos maestros que una venta necesita, leídos fuera de la transacción.
type masterData struct {
	customer    *entity.Customer
	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	mainWarehID string
}

// lookup lee en paralelo cliente, productos y bodegas.
func (e *Engine) lookup(ctx context.Context, customerID, saleWarehouseID string, lines []LineInput) (*masterData, error) {
	md := &masterData{
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
	}
	productIDs := make(map[string]bool)
	warehouseIDs := make(map[string]bool)
	needMain := false
	if saleWarehouseID != "" {
		warehouseIDs[saleWarehouseID] = true
	}
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, domain.InvalidInput("cada línea necesita un producto")
		}
		productIDs[l.ProductID] = true
		if l.WarehouseID != "" {
			warehouseIDs[l.WarehouseID] = true
		} else if saleWarehouseID == "" {
			needMain = true
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if customerID != "" {
		g.Go(func() error {
			c, err := e.repos.Customers.GetByID(gctx, customerID)
			if err != nil {
				return fmt.Errorf("leer cliente: %w", err)
			}
			if c == nil {
				return domain.NewNotFound("cliente", customerID)
			}
			md.customer = c
			return nil
		})
	}
	for id := range productIDs {
		g.Go(func() error {
			p, err := e.repos.Products.GetByID(gctx, id)
			if err != nil {
				return fmt.Errorf("leer producto: %w", err)
			}
			if p == nil {
				return domain.NewNotFound("producto", id)
			}
			mu.Lock()
			md.products[id] = p
			mu.Unlock()
			return nil
		})
	}
	for id := range warehouseIDs {
		g.Go(func() error {
			w, err := e.repos.Warehouses.GetByID(gctx, id)
			if err != nil {
				return fmt.Errorf("leer bodega: %w", err)
			}
			if w == nil {
				return domain.NewNotFound("bodega", id)
			}
			mu.Lock()
			md.warehouses[id] = w
			mu.Unlock()
			return nil
		})
	}
	if needMain {
		g.Go(func() error {
			w, err := e.repos.Warehouses.GetMain(gctx)
			if err != nil {
				return fmt.Errorf("leer bodega principal: %w", err)
			}
			if w == nil {
				return domain.InvalidInput("no hay bodega principal configurada")
			}
			mu.Lock()
			md.warehouses[w.ID] = w
			md.mainWarehID = w.ID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return md, nil
}

// resolveLines valida cada línea, fija su bodega (línea, venta o principal) y su precio.
// Un precio tomado del producto se convierte a la moneda de la venta; si no se pudo convertir,
// flagged es true.
func (e *Engine) resolveLines(sale *entity.Sale, in []LineInput, md *masterData) ([]entity.SaleLine, bool, error) {
	out := make([]entity.SaleLine, 0, len(in))
	flagged := false
	for i, l := range in {
		if l.Quantity < 1 {
			return nil, false, domain.InvalidInput(fmt.Sprintf("línea %d: la cantidad debe ser al menos 1", i+1))
		}
		if l.DiscountPct.Sign() < 0 || l.DiscountPct.GreaterThan(hundred) {
			return nil, false, domain.InvalidInput(fmt.Sprintf("línea %d: el descuento debe estar entre 0 y 100", i+1))
		}
		if l.UnitPrice != nil && l.UnitPrice.Sign() < 0 {
			return nil, false, domain.InvalidInput(fmt.Sprintf("línea %d: el precio no puede ser negativo", i+1))
		}
		product := md.products[l.ProductID]
		if product == nil {
			return nil, false, domain.NewNotFound("producto", l.ProductID)
		}
		if !product.Active {
			return nil, false, domain.InvalidInput(fmt.Sprintf("el producto %s está inactivo", product.Code))
		}

		whID := l.WarehouseID
		if whID == "" {
			whID = sale.WarehouseID
		}
		if whID == "" {
			whID = md.mainWarehID
		}
		wh := md.warehouses[whID]
		if wh == nil {
			return nil, false, domain.NewNotFound("bodega", whID)
		}
		if !wh.Active {
			return nil, false, domain.InvalidInput(fmt.Sprintf("la bodega %s está inactiva", wh.Name))
		}

		var price decimal.Decimal
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		} else {
			converted, ok := e.rules.Normalize(product.Price, e.rules.BaseCurrency, sale.Currency, sale.ExchangeRate)
			if !ok {
				flagged = true
				e.log.Warn().Str("product_id", product.ID).Str("currency", sale.Currency).Msg("precio sin convertir, requiere conciliación")
			}
			price = converted
		}
		out = append(out, entity.SaleLine{
			SaleID:      sale.ID,
			ProductID:   l.ProductID,
			WarehouseID: whID,
			Quantity:    l.Quantity,
			UnitPrice:   price,
			DiscountPct: l.DiscountPct,
			Subtotal:    settlement.LineSubtotal(l.Quantity, price, l.DiscountPct),
		})
	}
	return out, flagged, nil
}

func (e *Engine) applyTotals(sale *entity.Sale) {
	subs := make([]decimal.Decimal, len(sale.Lines))
	for i, l := range sale.Lines {
		subs[i] = l.Subtotal
	}
	t := e.rules.SplitInclusive(subs...)
	sale.Subtotal, sale.Tax, sale.Total = t.Subtotal, t.Tax, t.Total
}

func (e *Engine) buildPayment(sale *entity.Sale, in PaymentInput) (*entity.Payment, error) {
	if in.Amount.Sign() <= 0 {
		return nil, domain.InvalidInput("el monto del pago debe ser positivo")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = sale.Currency
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = e.now()
	}
	normalized, ok := e.rules.Normalize(in.Amount, currency, sale.Currency, sale.ExchangeRate)
	p := &entity.Payment{
		SaleID:              sale.ID,
		Amount:              settlement.Round2(in.Amount),
		Currency:            currency,
		Method:              in.Method,
		Reference:           in.Reference,
		AccountID:           in.AccountID,
		NormalizedAmount:    normalized,
		NeedsReconciliation: !ok,
		PaidAt:              paidAt,
	}
	if !ok {
		sale.NeedsReconciliation = true
		e.log.Warn().Str("sale_id", sale.ID).Str("payment_currency", currency).Str("sale_currency", sale.Currency).
			Str("rate", sale.ExchangeRate.String()).Msg("pago sin tipo de cambio válido, requiere conciliación")
	}
	return p, nil
}

// recordPayments publica métricas de pagos ya confirmados.
func (e *Engine) recordPayments(pays ...entity.Payment) {
	for _, p := range pays {
		e.metrics.PaymentRecorded(p.Currency, p.NeedsReconciliation)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

// lockOrder devuelve las líneas ordenadas por (bodega, producto), el mismo orden en que
// se bloquean las ubicaciones en cualquier venta.
func lockOrder(lines []entity.SaleLine) []entity.SaleLine {
	out := append([]entity.SaleLine(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// FinalizeOrder confirma una venta en DRAFT: valida el pago al contado y descuenta stock
// con una salida del kardex por línea, todo en una transacción.
func (e *Engine) FinalizeOrder(ctx context.Context, saleID, actor string) (*entity.Sale, error) {
	var out *entity.Sale
	err := e.txRunner.Run(ctx, func(tx repository.Repos) error {
		// ── 1. Bloquear la venta ──────────────────────────────────────────────
		sale, err := e.lockSale(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if err := sale.Require(entity.SaleActionFinalize); err != nil {
			return err
		}
		if len(sale.Lines) == 0 {
			return domain.InvalidInput("la venta no tiene líneas")
		}

		// ── 2. Validar pago al contado antes de tocar stock ──────────────────
		paid := sale.Paid()
		if sale.PaymentTerms == entity.TermsCash && !e.rules.CoversCash(sale.Total, paid) {
			return &domain.IncompletePaymentError{Total: sale.Total, Paid: paid, Tolerance: e.rules.CashTolerance}
		}

		// ── 3. Una salida por línea ──────────────────────────────────────────
		for _, line := range lockOrder(sale.Lines) {
			_, err := e.ledger.RecordOutboundInTx(ctx, tx, line.WarehouseID, inventory.MovementInput{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Reason:    "Venta " + sale.Code,
				Actor:     actor,
				Reference: sale.ID,
			})
			if err != nil {
				return err
			}
		}

		// ── 4. Estado y saldo ────────────────────────────────────────────────
		if sale.PaymentTerms == entity.TermsCash {
			sale.Outstanding = decimal.Zero
			sale.InstallmentAmount = decimal.Zero
			sale.Status = entity.SaleCompleted
		} else {
			sale.Outstanding = settlement.Outstanding(sale.Total, paid)
			sale.InstallmentAmount = settlement.InstallmentAmount(sale.Outstanding, sale.Installments)
			sale.Status = entity.SalePendingPayment
			if sale.Outstanding.IsZero() {
				sale.Status = entity.SaleCompleted
			}
		}
		if err := tx.Sales.UpdateHeader(ctx, sale); err != nil {
			return fmt.Errorf("actualizar venta: %w", err)
		}
		out = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.transition(out, entity.SaleDraft, actor)
	return out, nil
}

// CancelOrder anula una venta. Un borrador se borra sin tocar stock; una venta confirmada
// devuelve cada línea a su bodega con una entrada del kardex y queda CANCELLED.
func (e *Engine) CancelOrder(ctx context.Context, saleID, actor, reason string) (*CancelResult, error) {
	res := &CancelResult{}
	var from entity.SaleStatus
	err := e.txRunner.Run(ctx, func(tx repository.Repos) error {
		res.Movements = nil
		sale, err := e.lockSale(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if err := sale.Require(entity.SaleActionCancel); err != nil {
			return err
		}
		from = sale.Status
		res.Sale = sale
		if sale.Status == entity.SaleDraft {
			res.Deleted = true
			return tx.Sales.Delete(ctx, sale.ID)
		}

		why := "Anulación " + sale.Code
		if reason != "" {
			why += ": " + reason
		}
		for _, line := range lockOrder(sale.Lines) {
			m, err := e.ledger.RecordInboundInTx(ctx, tx, line.WarehouseID, inventory.MovementInput{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Reason:    why,
				Actor:     actor,
				Reference: sale.ID,
			})
			if err != nil {
				return err
			}
			res.Movements = append(res.Movements, m)
		}
		sale.Status = entity.SaleCancelled
		sale.Outstanding = decimal.Zero
		sale.InstallmentAmount = decimal.Zero
		if err := tx.Sales.UpdateHeader(ctx, sale); err != nil {
			return fmt.Errorf("actualizar venta: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Deleted {
		e.log.Info().Str("sale_id", saleID).Str("actor", actor).Msg("borrador de venta eliminado")
		e.metrics.SaleTransition(from, entity.SaleCancelled)
		return res, nil
	}
	e.transition(res.Sale, from, actor)
	return res, nil
}

// RegisterAmortization agrega un pago a una venta a crédito con saldo pendiente.
// El saldo no baja de cero; al llegar a cero la venta queda COMPLETED.
func (e *Engine) RegisterAmortization(ctx context.Context, saleID string, in PaymentInput, actor string) (*entity.Sale, error) {
	var out *entity.Sale
	var pay *entity.Payment
	var from entity.SaleStatus
	err := e.txRunner.Run(ctx, func(tx repository.Repos) error {
		sale, err := e.lockSale(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if err := sale.Require(entity.SaleActionPay); err != nil {
			return err
		}
		if sale.Outstanding.Sign() <= 0 {
			return &domain.StateTransitionError{SaleID: sale.ID, From: string(sale.Status), Action: entity.SaleActionPay}
		}
		from = sale.Status
		pay, err = e.buildPayment(sale, in)
		if err != nil {
			return err
		}
		if err := tx.Sales.AddPayment(ctx, pay); err != nil {
			return fmt.Errorf("guardar pago: %w", err)
		}
		sale.Payments = append(sale.Payments, *pay)
		sale.Outstanding = settlement.Outstanding(sale.Outstanding, pay.NormalizedAmount)
		if sale.Outstanding.IsZero() {
			sale.Status = entity.SaleCompleted
		}
		if err := tx.Sales.UpdateHeader(ctx, sale); err != nil {
			return fmt.Errorf("actualizar venta: %w", err)
		}
		out = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.recordPayments(*pay)
	e.log.Info().Str("sale_id", out.ID).Str("actor", actor).Str("outstanding", out.Outstanding.StringFixed(2)).Msg("pago registrado")
	e.transition(out, from, actor)
	return out, nil
}

// RecomputeBalance recalcula el saldo desde los pagos registrados. Una venta PENDING_PAYMENT
// cubierta pasa a COMPLETED. Una venta anulada no admite recálculo.
func (e *Engine) RecomputeBalance(ctx context.Context, saleID string) (*entity.Sale, error) {
	var out *entity.Sale
	var from entity.SaleStatus
	err := e.txRunner.Run(ctx, func(tx repository.Repos) error {
		sale, err := e.lockSale(ctx, tx, saleID)
		if err != nil {
			return err
		}
		from = sale.Status
		switch sale.Status {
		case entity.SaleCancelled:
			return &domain.StateTransitionError{SaleID: sale.ID, From: string(sale.Status), Action: actionRecompute}
		case entity.SaleCompleted:
			out = sale
			return nil
		}
		sale.Outstanding = settlement.Outstanding(sale.Total, sale.Paid())
		if sale.Status == entity.SalePendingPayment {
			sale.InstallmentAmount = settlement.InstallmentAmount(sale.Outstanding, sale.Installments)
			if sale.Outstanding.IsZero() {
				sale.Status = entity.SaleCompleted
			}
		}
		if err := tx.Sales.UpdateHeader(ctx, sale); err != nil {
			return fmt.Errorf("actualizar venta: %w", err)
		}
		out = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.transition(out, from, "")
	return out, nil
}

// GetOrder devuelve una venta con sus líneas y pagos.
func (e *Engine) GetOrder(ctx context.Context, saleID string) (*entity.Sale, error) {
	sale, err := e.repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("leer venta: %w", err)
	}
	if sale == nil {
		return nil, domain.NewNotFound("venta", saleID)
	}
	return sale, nil
}

// ListOrders lista ventas por estado, rango de fechas y cliente, más reciente primero.
func (e *Engine) ListOrders(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	return e.repos.Sales.List(ctx, f)
}

func (e *Engine) lockSale(ctx context.Context, tx repository.Repos, saleID string) (*entity.Sale, error) {
	sale, err := tx.Sales.GetForUpdate(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("bloquear venta: %w", err)
	}
	if sale == nil {
		return nil, domain.NewNotFound("venta", saleID)
	}
	return sale, nil
}

func (e *Engine) transition(sale *entity.Sale, from entity.SaleStatus, actor string) {
	if sale == nil || sale.Status == from {
		return
	}
	e.metrics.SaleTransition(from, sale.Status)
	e.log.Info().Str("sale_id", sale.ID).Str("code", sale.Code).Str("from", string(from)).Str("to", string(sale.Status)).
		Str("actor", actor).Msg("cambio de estado de venta")
}
