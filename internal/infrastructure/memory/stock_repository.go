package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

func locationKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

// StockLocationRepo implementa repository.StockLocationRepository.
type StockLocationRepo struct{ v view }

var _ repository.StockLocationRepository = (*StockLocationRepo)(nil)

func (r *StockLocationRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockLocation, error) {
	var out *entity.StockLocation
	err := r.v.read(func(st *state) error {
		if l, ok := st.locations[locationKey(productID, warehouseID)]; ok {
			l = cloneLocation(l)
			out = &l
		}
		return nil
	})
	return out, err
}

// GetForUpdate es igual a Get: la transacción ya tiene el mutex del Store.
func (r *StockLocationRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockLocation, error) {
	return r.Get(ctx, productID, warehouseID)
}

func (r *StockLocationRepo) Create(ctx context.Context, l *entity.StockLocation) error {
	return r.v.read(func(st *state) error {
		key := locationKey(l.ProductID, l.WarehouseID)
		if _, ok := st.locations[key]; ok {
			return nil
		}
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		now := time.Now()
		l.CreatedAt, l.UpdatedAt = now, now
		st.locations[key] = cloneLocation(*l)
		return nil
	})
}

func (r *StockLocationRepo) update(id string, fn func(l *entity.StockLocation)) error {
	return r.v.read(func(st *state) error {
		for k, l := range st.locations {
			if l.ID == id {
				fn(&l)
				l.UpdatedAt = time.Now()
				st.locations[k] = l
				return nil
			}
		}
		return domain.NewNotFound("ubicación", id)
	})
}

func (r *StockLocationRepo) UpdateStock(ctx context.Context, id string, stock int64) error {
	return r.update(id, func(l *entity.StockLocation) { l.Stock = stock })
}

func (r *StockLocationRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(id, func(l *entity.StockLocation) { l.Active = active })
}

func (r *StockLocationRepo) SetMinStock(ctx context.Context, id string, min *int64) error {
	return r.update(id, func(l *entity.StockLocation) {
		if min == nil {
			l.MinStock = nil
			return
		}
		v := *min
		l.MinStock = &v
	})
}

func (r *StockLocationRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockLocation, error) {
	var out []*entity.StockLocation
	err := r.v.read(func(st *state) error {
		for _, l := range st.locations {
			if l.ProductID == productID {
				l = cloneLocation(l)
				out = append(out, &l)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, err
}

// MovementRepo implementa repository.MovementRepository.
type MovementRepo struct{ v view }

var _ repository.MovementRepository = (*MovementRepo)(nil)

// LockDay no hace nada: la transacción ya es exclusiva.
func (r *MovementRepo) LockDay(ctx context.Context, dayKey string) error { return nil }

func (r *MovementRepo) LastSequence(ctx context.Context, dayKey string) (int, error) {
	var last int
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if n, ok := sequenceOf(m.Code, dayKey); ok && n > last {
				last = n
			}
		}
		return nil
	})
	return last, err
}

func sequenceOf(code, dayKey string) (int, bool) {
	rest, ok := strings.CutPrefix(code, dayKey+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	return r.v.read(func(st *state) error {
		for _, other := range st.movements {
			if other.Code == m.Code {
				return domain.ErrDuplicateCode
			}
		}
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.CreatedAt = time.Now()
		if m.OccurredAt.IsZero() {
			m.OccurredAt = m.CreatedAt
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				m := m
				out = &m
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if matchMovement(&m, f) {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Empates por fecha se resuelven por orden de inserción.
	if f.Ascending {
		sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	} else {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	}
	return paginate(out, f.Limit, f.Offset), nil
}

func matchMovement(m *entity.Movement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && m.OriginWarehouseID != f.WarehouseID && m.DestWarehouseID != f.WarehouseID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.Reference != "" && m.Reference != f.Reference {
		return false
	}
	if f.From != nil && m.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.OccurredAt.After(*f.To) {
		return false
	}
	return true
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
