package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// SaleRepo implementa repository.SaleRepository.
type SaleRepo struct{ v view }

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) LockDay(ctx context.Context, dayKey string) error { return nil }

func (r *SaleRepo) LastSequence(ctx context.Context, dayKey string) (int, error) {
	var last int
	err := r.v.read(func(st *state) error {
		for _, s := range st.sales {
			if n, ok := sequenceOf(s.Code, dayKey); ok && n > last {
				last = n
			}
		}
		return nil
	})
	return last, err
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	return r.v.read(func(st *state) error {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		for _, other := range st.sales {
			if other.ID == s.ID {
				return domain.ErrDuplicate
			}
			if other.Code == s.Code {
				return domain.ErrDuplicateCode
			}
		}
		now := time.Now()
		s.CreatedAt, s.UpdatedAt = now, now
		for i := range s.Lines {
			if s.Lines[i].ID == "" {
				s.Lines[i].ID = uuid.New().String()
			}
			s.Lines[i].SaleID = s.ID
		}
		for i := range s.Payments {
			if s.Payments[i].ID == "" {
				s.Payments[i].ID = uuid.New().String()
			}
			s.Payments[i].SaleID = s.ID
		}
		st.sales[s.ID] = cloneSale(*s)
		return nil
	})
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.v.read(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			s = cloneSale(s)
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) UpdateHeader(ctx context.Context, s *entity.Sale) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.sales[s.ID]
		if !ok {
			return domain.NewNotFound("venta", s.ID)
		}
		cur.Subtotal = s.Subtotal
		cur.Tax = s.Tax
		cur.Total = s.Total
		cur.Outstanding = s.Outstanding
		cur.InstallmentAmount = s.InstallmentAmount
		cur.Installments = s.Installments
		cur.Status = s.Status
		cur.NeedsReconciliation = s.NeedsReconciliation
		cur.UpdatedAt = time.Now()
		s.UpdatedAt = cur.UpdatedAt
		st.sales[cur.ID] = cur
		return nil
	})
}

func (r *SaleRepo) ReplaceLines(ctx context.Context, saleID string, lines []entity.SaleLine) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.sales[saleID]
		if !ok {
			return domain.NewNotFound("venta", saleID)
		}
		cur.Lines = make([]entity.SaleLine, len(lines))
		for i, l := range lines {
			if l.ID == "" {
				l.ID = uuid.New().String()
			}
			l.SaleID = saleID
			cur.Lines[i] = l
		}
		st.sales[cur.ID] = cur
		return nil
	})
}

func (r *SaleRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.sales[p.SaleID]
		if !ok {
			return domain.NewNotFound("venta", p.SaleID)
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		cur.Payments = append(cur.Payments, *p)
		st.sales[cur.ID] = cur
		return nil
	})
}

func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return domain.NewNotFound("venta", id)
		}
		delete(st.sales, id)
		return nil
	})
}

func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.v.read(func(st *state) error {
		for _, s := range st.sales {
			if f.Status != "" && s.Status != f.Status {
				continue
			}
			if f.CustomerID != "" && s.CustomerID != f.CustomerID {
				continue
			}
			if f.From != nil && s.Date.Before(*f.From) {
				continue
			}
			if f.To != nil && s.Date.After(*f.To) {
				continue
			}
			s = cloneSale(s)
			out = append(out, &s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Code > out[j].Code
		}
		return out[i].Date.After(out[j].Date)
	})
	return paginate(out, f.Limit, f.Offset), nil
}
