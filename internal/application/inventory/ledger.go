package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// maxCodeAttempts acota los reintentos ante un código de movimiento repetido.
const maxCodeAttempts = 3

// AdjustmentDirection indica si un ajuste suma o resta stock.
type AdjustmentDirection string

const (
	AdjustmentIncrease AdjustmentDirection = "INCREASE"
	AdjustmentDecrease AdjustmentDirection = "DECREASE"
)

// MovementInput son los datos comunes de cualquier movimiento.
type MovementInput struct {
	ProductID  string
	Quantity   int64
	Reason     string
	Actor      string
	Reference  string
	OccurredAt time.Time // cero = ahora
}

// ListQuery acota las consultas del kardex.
type ListQuery struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Ledger es el kardex: registra movimientos inmutables y delega en Service el cambio de stock.
// Cada Record* abre su propia transacción; las variantes InTx se unen a la del llamador.
type Ledger struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	stock    *Service
	metrics  Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// NewLedger construye el kardex. metrics puede ser nil.
func NewLedger(txRunner repository.TxRunner, repos repository.Repos, stock *Service, metrics Metrics, log zerolog.Logger) *Ledger {
	if metrics == nil {
		metrics = NopMetrics
	}
	return &Ledger{
		txRunner: txRunner,
		repos:    repos,
		stock:    stock,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj usado para fechas y códigos.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func (l *Ledger) inTx(ctx context.Context, fn func(tx repository.Repos) (*entity.Movement, error)) (*entity.Movement, error) {
	var out *entity.Movement
	err := l.txRunner.Run(ctx, func(tx repository.Repos) error {
		m, err := fn(tx)
		out = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecordInbound registra una entrada a warehouseID.
func (l *Ledger) RecordInbound(ctx context.Context, warehouseID string, in MovementInput) (*entity.Movement, error) {
	return l.inTx(ctx, func(tx repository.Repos) (*entity.Movement, error) {
		return l.RecordInboundInTx(ctx, tx, warehouseID, in)
	})
}

// RecordInboundInTx registra una entrada dentro de la transacción del llamador.
func (l *Ledger) RecordInboundInTx(ctx context.Context, tx repository.Repos, warehouseID string, in MovementInput) (*entity.Movement, error) {
	return l.record(ctx, tx, l.build(entity.MovementInbound, "", warehouseID, in))
}

// RecordOutbound registra una salida desde warehouseID.
func (l *Ledger) RecordOutbound(ctx context.Context, warehouseID string, in MovementInput) (*entity.Movement, error) {
	return l.inTx(ctx, func(tx repository.Repos) (*entity.Movement, error) {
		return l.RecordOutboundInTx(ctx, tx, warehouseID, in)
	})
}

// RecordOutboundInTx registra una salida dentro de la transacción del llamador.
func (l *Ledger) RecordOutboundInTx(ctx context.Context, tx repository.Repos, warehouseID string, in MovementInput) (*entity.Movement, error) {
	return l.record(ctx, tx, l.build(entity.MovementOutbound, warehouseID, "", in))
}

// RecordTransfer registra un traslado entre dos bodegas.
func (l *Ledger) RecordTransfer(ctx context.Context, originID, destID string, in MovementInput) (*entity.Movement, error) {
	return l.inTx(ctx, func(tx repository.Repos) (*entity.Movement, error) {
		return l.RecordTransferInTx(ctx, tx, originID, destID, in)
	})
}

// RecordTransferInTx registra un traslado dentro de la transacción del llamador.
func (l *Ledger) RecordTransferInTx(ctx context.Context, tx repository.Repos, originID, destID string, in MovementInput) (*entity.Movement, error) {
	return l.record(ctx, tx, l.build(entity.MovementTransfer, originID, destID, in))
}

// RecordAdjustment registra un ajuste sobre warehouseID. La cantidad siempre es positiva;
// la dirección decide si la bodega queda como destino (aumento) u origen (disminución).
func (l *Ledger) RecordAdjustment(ctx context.Context, warehouseID string, dir AdjustmentDirection, in MovementInput) (*entity.Movement, error) {
	return l.inTx(ctx, func(tx repository.Repos) (*entity.Movement, error) {
		return l.RecordAdjustmentInTx(ctx, tx, warehouseID, dir, in)
	})
}

// RecordAdjustmentInTx registra un ajuste dentro de la transacción del llamador.
func (l *Ledger) RecordAdjustmentInTx(ctx context.Context, tx repository.Repos, warehouseID string, dir AdjustmentDirection, in MovementInput) (*entity.Movement, error) {
	switch dir {
	case AdjustmentIncrease:
		return l.record(ctx, tx, l.build(entity.MovementAdjustment, "", warehouseID, in))
	case AdjustmentDecrease:
		return l.record(ctx, tx, l.build(entity.MovementAdjustment, warehouseID, "", in))
	}
	err := domain.InvalidMovement(fmt.Sprintf("dirección de ajuste desconocida %q", dir))
	l.metrics.MovementRejected(entity.MovementAdjustment, rejectReason(err))
	return nil, err
}

func (l *Ledger) build(t entity.MovementType, originID, destID string, in MovementInput) *entity.Movement {
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = l.now()
	}
	return &entity.Movement{
		ProductID:         in.ProductID,
		OriginWarehouseID: originID,
		DestWarehouseID:   destID,
		Type:              t,
		Quantity:          in.Quantity,
		Reason:            in.Reason,
		Actor:             in.Actor,
		Reference:         in.Reference,
		OccurredAt:        occurred,
	}
}

func (l *Ledger) record(ctx context.Context, tx repository.Repos, m *entity.Movement) (*entity.Movement, error) {
	if err := l.apply(ctx, tx, m); err != nil {
		l.metrics.MovementRejected(m.Type, rejectReason(err))
		l.log.Debug().Err(err).Str("type", string(m.Type)).Str("product_id", m.ProductID).Int64("quantity", m.Quantity).Msg("movimiento rechazado")
		return nil, err
	}
	l.metrics.MovementRecorded(m.Type)
	l.log.Info().Str("code", m.Code).Str("type", string(m.Type)).Str("product_id", m.ProductID).Int64("quantity", m.Quantity).Msg("movimiento registrado")
	return m, nil
}

func (l *Ledger) apply(ctx context.Context, tx repository.Repos, m *entity.Movement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	product, err := tx.Products.GetByID(ctx, m.ProductID)
	if err != nil {
		return fmt.Errorf("leer producto: %w", err)
	}
	if product == nil {
		return domain.NewNotFound("producto", m.ProductID)
	}
	for _, wh := range []string{m.OriginWarehouseID, m.DestWarehouseID} {
		if wh == "" {
			continue
		}
		if err := checkWarehouse(ctx, tx, wh); err != nil {
			return err
		}
	}

	if m.Type == entity.MovementTransfer {
		if err := l.stock.Transfer(ctx, tx, m.ProductID, m.OriginWarehouseID, m.DestWarehouseID, m.Quantity); err != nil {
			return err
		}
	} else {
		for _, e := range m.Effects() {
			if _, err := l.stock.AdjustStock(ctx, tx, m.ProductID, e.WarehouseID, e.Delta); err != nil {
				return err
			}
		}
	}
	return l.appendEntry(ctx, tx, m)
}

func checkWarehouse(ctx context.Context, tx repository.Repos, id string) error {
	wh, err := tx.Warehouses.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("leer bodega: %w", err)
	}
	if wh == nil {
		return domain.NewNotFound("bodega", id)
	}
	if !wh.Active {
		return domain.InvalidMovement(fmt.Sprintf("la bodega %s está inactiva", id))
	}
	return nil
}

// appendEntry asigna el siguiente código del día bajo el candado diario y guarda la entrada.
// Ante un código repetido vuelve a leer la secuencia, hasta maxCodeAttempts veces.
func (l *Ledger) appendEntry(ctx context.Context, tx repository.Repos, m *entity.Movement) error {
	day := l.now()
	key := entity.DayKey(entity.MovementCodePrefix, day)
	if err := tx.Movements.LockDay(ctx, key); err != nil {
		return fmt.Errorf("candado de secuencia: %w", err)
	}
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		last, err := tx.Movements.LastSequence(ctx, key)
		if err != nil {
			return fmt.Errorf("leer secuencia: %w", err)
		}
		m.Code = entity.DailyCode(entity.MovementCodePrefix, day, last+1)
		err = tx.Movements.Create(ctx, m)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateCode) {
			return fmt.Errorf("guardar movimiento: %w", err)
		}
		l.log.Warn().Str("code", m.Code).Int("attempt", attempt).Msg("código de movimiento repetido, reintentando")
	}
	return fmt.Errorf("%w: %d intentos para %s", domain.ErrDuplicateCode, maxCodeAttempts, key)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidMovement):
		return "invalid_movement"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicateCode):
		return "duplicate_code"
	}
	return "error"
}

// Get devuelve un movimiento por id.
func (l *Ledger) Get(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := l.repos.Movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NewNotFound("movimiento", id)
	}
	return m, nil
}

// ListByProduct lista los movimientos de un producto, más reciente primero.
func (l *Ledger) ListByProduct(ctx context.Context, productID string, q ListQuery) ([]*entity.Movement, error) {
	return l.list(ctx, repository.MovementFilter{ProductID: productID}, q)
}

// ListByWarehouse lista los movimientos con la bodega como origen o destino, más reciente primero.
func (l *Ledger) ListByWarehouse(ctx context.Context, warehouseID string, q ListQuery) ([]*entity.Movement, error) {
	return l.list(ctx, repository.MovementFilter{WarehouseID: warehouseID}, q)
}

// ListByType lista los movimientos de un tipo, más reciente primero.
func (l *Ledger) ListByType(ctx context.Context, t entity.MovementType, q ListQuery) ([]*entity.Movement, error) {
	if !t.Valid() {
		return nil, domain.InvalidInput(fmt.Sprintf("tipo de movimiento desconocido %q", t))
	}
	return l.list(ctx, repository.MovementFilter{Type: t}, q)
}

// ListByReference lista los movimientos originados por un documento (p. ej. una venta).
func (l *Ledger) ListByReference(ctx context.Context, reference string) ([]*entity.Movement, error) {
	return l.list(ctx, repository.MovementFilter{Reference: reference}, ListQuery{})
}

func (l *Ledger) list(ctx context.Context, f repository.MovementFilter, q ListQuery) ([]*entity.Movement, error) {
	f.From, f.To, f.Limit, f.Offset = q.From, q.To, q.Limit, q.Offset
	return l.repos.Movements.List(ctx, f)
}

// Discrepancy es una ubicación cuyo stock guardado no coincide con la reconstrucción del kardex.
type Discrepancy struct {
	WarehouseID string
	Stored      int64
	Replayed    int64
}

// Reconcile reconstruye el stock del producto desde sus movimientos (del más antiguo al más nuevo)
// y lo compara con cada ubicación. Lista vacía = kardex y stock coinciden.
func (l *Ledger) Reconcile(ctx context.Context, productID string) ([]Discrepancy, error) {
	var out []Discrepancy
	err := l.txRunner.Run(ctx, func(tx repository.Repos) error {
		product, err := tx.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound("producto", productID)
		}
		movs, err := tx.Movements.List(ctx, repository.MovementFilter{ProductID: productID, Ascending: true})
		if err != nil {
			return err
		}
		replayed := entity.Replay(movs)
		locs, err := tx.Locations.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(locs))
		for _, loc := range locs {
			seen[loc.WarehouseID] = true
			if r := replayed[loc.WarehouseID]; r != loc.Stock {
				out = append(out, Discrepancy{WarehouseID: loc.WarehouseID, Stored: loc.Stock, Replayed: r})
			}
		}
		for wh, r := range replayed {
			if !seen[wh] && r != 0 {
				out = append(out, Discrepancy{WarehouseID: wh, Replayed: r})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) > 0 {
		l.log.Warn().Str("product_id", productID).Int("discrepancies", len(out)).Msg("kardex no coincide con el stock")
	}
	return out, nil
}
