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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (cabecera, líneas y pagos).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, code, date, customer_id, customer_name, currency, exchange_rate, payment_terms,
	installments, warehouse_id, subtotal, tax, total, outstanding, installment_amount, status,
	needs_reconciliation, created_by, created_at, updated_at`

const saleLineColumns = `id, sale_id, product_id, warehouse_id, quantity, unit_price, discount_pct, subtotal`

const paymentColumns = `id, sale_id, amount, currency, method, reference, account_id, normalized_amount,
	needs_reconciliation, paid_at`

func (r *SaleRepo) LockDay(ctx context.Context, dayKey string) error {
	return lockKey(ctx, r.q, dayKey)
}

func (r *SaleRepo) LastSequence(ctx context.Context, dayKey string) (int, error) {
	return lastSequence(ctx, r.q, "sales", dayKey)
}

// Create guarda cabecera, líneas y pagos dentro de un savepoint; un código repetido devuelve ErrDuplicateCode.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now

	sp, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint sale: %w", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = sp.Exec(ctx, query,
		s.ID, s.Code, s.Date, nullable(s.CustomerID), s.CustomerName, s.Currency, s.ExchangeRate, string(s.PaymentTerms),
		s.Installments, nullable(s.WarehouseID), s.Subtotal, s.Tax, s.Total, s.Outstanding, s.InstallmentAmount, string(s.Status),
		s.NeedsReconciliation, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	if err := insertLines(ctx, sp, s.ID, s.Lines); err != nil {
		return err
	}
	for i := range s.Payments {
		s.Payments[i].SaleID = s.ID
		if err := insertPayment(ctx, sp, &s.Payments[i]); err != nil {
			return err
		}
	}
	return sp.Commit(ctx)
}

func insertLines(ctx context.Context, q Querier, saleID string, lines []entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (id, sale_id, position, product_id, warehouse_id, quantity, unit_price, discount_pct, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i := range lines {
		l := &lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.SaleID = saleID
		if _, err := q.Exec(ctx, query, l.ID, saleID, i, l.ProductID, l.WarehouseID, l.Quantity, l.UnitPrice, l.DiscountPct, l.Subtotal); err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

func insertPayment(ctx context.Context, q Querier, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	query := `INSERT INTO sale_payments (` + paymentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.Exec(ctx, query,
		p.ID, p.SaleID, p.Amount, p.Currency, p.Method, p.Reference, p.AccountID, p.NormalizedAmount,
		p.NeedsReconciliation, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, warehouseID *string
	var terms, status string
	err := row.Scan(
		&s.ID, &s.Code, &s.Date, &customerID, &s.CustomerName, &s.Currency, &s.ExchangeRate, &terms,
		&s.Installments, &warehouseID, &s.Subtotal, &s.Tax, &s.Total, &s.Outstanding, &s.InstallmentAmount, &status,
		&s.NeedsReconciliation, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CustomerID, s.WarehouseID = deref(customerID), deref(warehouseID)
	s.PaymentTerms = entity.PaymentTerms(terms)
	s.Status = entity.SaleStatus(status)
	return &s, nil
}

func (r *SaleRepo) get(ctx context.Context, id, suffix string) (*entity.Sale, error) {
	if !isUUID(id) {
		return nil, nil
	}
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadChildren(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) loadChildren(ctx context.Context, s *entity.Sale) error {
	rows, err := r.q.Query(ctx, `SELECT `+saleLineColumns+` FROM sale_lines WHERE sale_id = $1 ORDER BY position`, s.ID)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	s.Lines = nil
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.UnitPrice, &l.DiscountPct, &l.Subtotal); err != nil {
			rows.Close()
			return err
		}
		s.Lines = append(s.Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.q.Query(ctx, `SELECT `+paymentColumns+` FROM sale_payments WHERE sale_id = $1 ORDER BY paid_at, id`, s.ID)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	s.Payments = nil
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Amount, &p.Currency, &p.Method, &p.Reference, &p.AccountID,
			&p.NormalizedAmount, &p.NeedsReconciliation, &p.PaidAt); err != nil {
			return err
		}
		s.Payments = append(s.Payments, p)
	}
	return rows.Err()
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera; líneas y pagos quedan protegidos por ese candado.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SaleRepo) UpdateHeader(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales SET subtotal = $2, tax = $3, total = $4, outstanding = $5, installment_amount = $6,
			installments = $7, status = $8, needs_reconciliation = $9, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.Subtotal, s.Tax, s.Total, s.Outstanding, s.InstallmentAmount,
		s.Installments, string(s.Status), s.NeedsReconciliation)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("venta", s.ID)
	}
	return nil
}

func (r *SaleRepo) ReplaceLines(ctx context.Context, saleID string, lines []entity.SaleLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale lines: %w", err)
	}
	return insertLines(ctx, r.q, saleID, lines)
}

func (r *SaleRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	return insertPayment(ctx, r.q, p)
}

// Delete borra la venta; líneas y pagos caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("venta", id)
	}
	return nil
}

// List devuelve cabeceras con sus líneas y pagos, de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.CustomerID != "" {
		if !isUUID(f.CustomerID) {
			return nil, nil
		}
		add("customer_id = $%d", f.CustomerID)
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date <= $%d", *f.To)
	}
	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, code DESC"
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
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range list {
		if err := r.loadChildren(ctx, s); err != nil {
			return nil, err
		}
	}
	return list, nil
}
