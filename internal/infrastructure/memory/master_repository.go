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

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ v view }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.v.read(func(st *state) error {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if other.Code == p.Code {
				return domain.ErrDuplicate
			}
		}
		now := time.Now()
		p.CreatedAt, p.UpdatedAt = now, now
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.Code == code {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) RecalculateStock(ctx context.Context, productID string) (int64, error) {
	var total int64
	err := r.v.read(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.NewNotFound("producto", productID)
		}
		total = 0
		for _, l := range st.locations {
			if l.ProductID == productID && l.Active {
				total += l.Stock
			}
		}
		p.CurrentStock = total
		p.UpdatedAt = time.Now()
		st.products[p.ID] = p
		return nil
	})
	return total, err
}

// WarehouseRepo implementa repository.WarehouseRepository.
type WarehouseRepo struct{ v view }

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.v.read(func(st *state) error {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.ErrDuplicate
		}
		now := time.Now()
		w.CreatedAt, w.UpdatedAt = now, now
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.v.read(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) GetMain(ctx context.Context) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.v.read(func(st *state) error {
		for _, w := range st.warehouses {
			if w.IsMain {
				w := w
				out = &w
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.v.read(func(st *state) error {
		for _, w := range st.warehouses {
			w := w
			out = append(out, &w)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// CustomerRepo implementa repository.CustomerRepository.
type CustomerRepo struct{ v view }

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	return r.v.read(func(st *state) error {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if _, ok := st.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		now := time.Now()
		c.CreatedAt, c.UpdatedAt = now, now
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}
