// Package memory implementa los puertos de repositorio en memoria.
// Una transacción trabaja sobre una copia del estado y la publica solo al confirmar,
// con un único mutex que serializa transacciones completas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

type state struct {
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse
	customers  map[string]entity.Customer
	locations  map[string]entity.StockLocation // clave productID|warehouseID
	movements  []entity.Movement               // orden de inserción
	sales      map[string]entity.Sale
}

func newState() *state {
	return &state{
		products:   make(map[string]entity.Product),
		warehouses: make(map[string]entity.Warehouse),
		customers:  make(map[string]entity.Customer),
		locations:  make(map[string]entity.StockLocation),
		sales:      make(map[string]entity.Sale),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		warehouses: make(map[string]entity.Warehouse, len(s.warehouses)),
		customers:  make(map[string]entity.Customer, len(s.customers)),
		locations:  make(map[string]entity.StockLocation, len(s.locations)),
		movements:  append([]entity.Movement(nil), s.movements...),
		sales:      make(map[string]entity.Sale, len(s.sales)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = cloneLocation(v)
	}
	for k, v := range s.sales {
		c.sales[k] = cloneSale(v)
	}
	return c
}

func cloneLocation(l entity.StockLocation) entity.StockLocation {
	if l.MinStock != nil {
		min := *l.MinStock
		l.MinStock = &min
	}
	return l
}

func cloneSale(s entity.Sale) entity.Sale {
	s.Lines = append([]entity.SaleLine(nil), s.Lines...)
	s.Payments = append([]entity.Payment(nil), s.Payments...)
	return s
}

// Store guarda todo el estado en memoria.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// view da acceso al estado: dentro de una transacción usa la copia sin bloquear,
// fuera de ella bloquea el mutex por llamada.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

func (s *Store) repos(v view) repository.Repos {
	return repository.Repos{
		Products:   &ProductRepo{v: v},
		Warehouses: &WarehouseRepo{v: v},
		Customers:  &CustomerRepo{v: v},
		Locations:  &StockLocationRepo{v: v},
		Movements:  &MovementRepo{v: v},
		Sales:      &SaleRepo{v: v},
	}
}

// Repos devuelve repositorios fuera de transacción (lecturas y datos maestros).
func (s *Store) Repos() repository.Repos {
	return s.repos(view{store: s})
}

// TxRunner implementa repository.TxRunner sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea el runner de transacciones en memoria.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

var _ repository.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn sobre una copia del estado; si fn devuelve nil la copia reemplaza al estado.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.state.clone()
	if err := fn(r.store.repos(view{store: r.store, tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.state = work
	return nil
}
