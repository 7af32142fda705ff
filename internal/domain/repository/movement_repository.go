package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

// MovementFilter filtra el kardex. Los campos vacíos no filtran.
// WarehouseID coincide con origen o destino.
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	Type        entity.MovementType
	Reference   string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
	Ascending   bool // por defecto más reciente primero
}

// MovementRepository define el puerto del kardex. No hay update ni delete.
type MovementRepository interface {
	// LockDay toma el candado de secuencia del día hasta el fin de la transacción.
	LockDay(ctx context.Context, dayKey string) error
	// LastSequence devuelve la secuencia más alta usada con ese prefijo de día (0 si no hay).
	LastSequence(ctx context.Context, dayKey string) (int, error)
	// Create devuelve domain.ErrDuplicateCode si el código ya existe.
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, error)
}
