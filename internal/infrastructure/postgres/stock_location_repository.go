package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

var _ repository.StockLocationRepository = (*StockLocationRepo)(nil)

// StockLocationRepo implementación de StockLocationRepository sobre PostgreSQL (usable con pool o tx).
type StockLocationRepo struct {
	q Querier
}

// NewStockLocationRepository construye el adaptador de stock por bodega. Pasar pool o tx (Querier).
func NewStockLocationRepository(q Querier) *StockLocationRepo {
	return &StockLocationRepo{q: q}
}

const locationColumns = `id, product_id, warehouse_id, stock, min_stock, active, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.StockLocation, error) {
	var l entity.StockLocation
	if err := row.Scan(&l.ID, &l.ProductID, &l.WarehouseID, &l.Stock, &l.MinStock, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *StockLocationRepo) get(ctx context.Context, productID, warehouseID, suffix string) (*entity.StockLocation, error) {
	if !isUUID(productID) || !isUUID(warehouseID) {
		return nil, nil
	}
	query := `SELECT ` + locationColumns + ` FROM stock_locations
		WHERE product_id = $1 AND warehouse_id = $2` + suffix
	l, err := scanLocation(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock location: %w", err)
	}
	return l, nil
}

// Get obtiene la ubicación o nil si no existe.
func (r *StockLocationRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLocation, error) {
	return r.get(ctx, productID, warehouseID, "")
}

// GetForUpdate obtiene la ubicación y bloquea la fila (SELECT FOR UPDATE).
func (r *StockLocationRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLocation, error) {
	return r.get(ctx, productID, warehouseID, " FOR UPDATE")
}

// Create inserta la ubicación. Si ya existe (p. ej. otra transacción la creó primero) no hace nada;
// ON CONFLICT espera a que esa transacción termine.
func (r *StockLocationRepo) Create(ctx context.Context, l *entity.StockLocation) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now()
	l.CreatedAt, l.UpdatedAt = now, now
	query := `
		INSERT INTO stock_locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query, l.ID, l.ProductID, l.WarehouseID, l.Stock, l.MinStock, l.Active, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert stock location: %w", err)
	}
	return nil
}

func (r *StockLocationRepo) exec(ctx context.Context, op, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("ubicación", fmt.Sprint(args[0]))
	}
	return nil
}

// UpdateStock fija el stock de la ubicación.
func (r *StockLocationRepo) UpdateStock(ctx context.Context, id string, stock int64) error {
	return r.exec(ctx, "update stock", `UPDATE stock_locations SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
}

// SetActive activa o desactiva la ubicación.
func (r *StockLocationRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, "set location active", `UPDATE stock_locations SET active = $2, updated_at = now() WHERE id = $1`, id, active)
}

// SetMinStock fija el mínimo propio; nil lo quita.
func (r *StockLocationRepo) SetMinStock(ctx context.Context, id string, min *int64) error {
	return r.exec(ctx, "set location min", `UPDATE stock_locations SET min_stock = $2, updated_at = now() WHERE id = $1`, id, min)
}

// ListByProduct lista las ubicaciones del producto.
func (r *StockLocationRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLocation, error) {
	if !isUUID(productID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM stock_locations WHERE product_id = $1 ORDER BY warehouse_id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
