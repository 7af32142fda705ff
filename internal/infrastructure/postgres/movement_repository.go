package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del kardex sobre PostgreSQL. Solo inserta y consulta.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del kardex. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, code, product_id, origin_warehouse_id, dest_warehouse_id, type, quantity,
	reason, actor, reference, occurred_at, created_at`

// LockDay toma pg_advisory_xact_lock sobre la clave del día.
func (r *MovementRepo) LockDay(ctx context.Context, dayKey string) error {
	return lockKey(ctx, r.q, dayKey)
}

// LastSequence devuelve la secuencia más alta del día.
func (r *MovementRepo) LastSequence(ctx context.Context, dayKey string) (int, error) {
	return lastSequence(ctx, r.q, "movements", dayKey)
}

// Create inserta la entrada dentro de un savepoint: un código repetido revierte solo el savepoint
// y la transacción del llamador sigue usable para reintentar.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now()
	if m.OccurredAt.IsZero() {
		m.OccurredAt = m.CreatedAt
	}
	sp, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint movement: %w", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = sp.Exec(ctx, query,
		m.ID, m.Code, m.ProductID, nullable(m.OriginWarehouseID), nullable(m.DestWarehouseID), string(m.Type), m.Quantity,
		m.Reason, m.Actor, m.Reference, m.OccurredAt, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return sp.Commit(ctx)
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var origin, dest *string
	var typ string
	err := row.Scan(&m.ID, &m.Code, &m.ProductID, &origin, &dest, &typ, &m.Quantity,
		&m.Reason, &m.Actor, &m.Reference, &m.OccurredAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.OriginWarehouseID, m.DestWarehouseID = deref(origin), deref(dest)
	m.Type = entity.MovementType(typ)
	return &m, nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	if !isUUID(id) {
		return nil, nil
	}
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List aplica el filtro; el orden es occurred_at descendente salvo Ascending.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		if !isUUID(f.ProductID) {
			return nil, nil
		}
		add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		if !isUUID(f.WarehouseID) {
			return nil, nil
		}
		args = append(args, f.WarehouseID)
		where = append(where, fmt.Sprintf("(origin_warehouse_id = $%d OR dest_warehouse_id = $%d)", len(args), len(args)))
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.Reference != "" {
		add("reference = $%d", f.Reference)
	}
	if f.From != nil {
		add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_at <= $%d", *f.To)
	}

	query := `SELECT ` + movementColumns + ` FROM movements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Ascending {
		query += " ORDER BY occurred_at ASC, created_at ASC, code ASC"
	} else {
		query += " ORDER BY occurred_at DESC, created_at DESC, code DESC"
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
