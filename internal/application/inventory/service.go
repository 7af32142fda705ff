package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
)

// Service es el único que escribe cantidades de stock por ubicación.
// Cada mutación recalcula el stock agregado del producto en la misma transacción.
type Service struct {
	txRunner repository.TxRunner
	repos    repository.Repos
	log      zerolog.Logger
}

// NewService construye el servicio de inventario.
// repos se usa para lecturas fuera de transacción.
func NewService(txRunner repository.TxRunner, repos repository.Repos, log zerolog.Logger) *Service {
	return &Service{txRunner: txRunner, repos: repos, log: log}
}

// GetStock devuelve el stock de la ubicación, 0 si no existe.
func (s *Service) GetStock(ctx context.Context, productID, warehouseID string) (int64, error) {
	loc, err := s.repos.Locations.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, fmt.Errorf("leer ubicación: %w", err)
	}
	if loc == nil {
		return 0, nil
	}
	return loc.Stock, nil
}

// TotalStock suma el stock de las ubicaciones activas del producto.
func (s *Service) TotalStock(ctx context.Context, productID string) (int64, error) {
	product, err := s.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.NewNotFound("producto", productID)
	}
	locs, err := s.repos.Locations.ListByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, l := range locs {
		if l.Active {
			total += l.Stock
		}
	}
	return total, nil
}

// AdjustStock aplica delta a la ubicación dentro de la transacción tx.
// Bloquea la fila, la crea en 0 si no existe y rechaza resultados negativos.
func (s *Service) AdjustStock(ctx context.Context, tx repository.Repos, productID, warehouseID string, delta int64) (*entity.StockLocation, error) {
	loc, err := s.lockOrCreate(ctx, tx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if !loc.Active {
		return nil, domain.InvalidMovement(fmt.Sprintf("la ubicación %s/%s está inactiva", productID, warehouseID))
	}
	next := loc.Stock + delta
	if next < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Requested:   -delta,
			Available:   loc.Stock,
		}
	}
	if err := tx.Locations.UpdateStock(ctx, loc.ID, next); err != nil {
		return nil, fmt.Errorf("actualizar stock: %w", err)
	}
	loc.Stock = next
	if _, err := tx.Products.RecalculateStock(ctx, productID); err != nil {
		return nil, fmt.Errorf("recalcular stock del producto: %w", err)
	}
	return loc, nil
}

// Transfer mueve qty entre bodegas en la transacción tx. Bloquea primero la bodega de id menor;
// si el origen no alcanza, ninguna fila cambia.
func (s *Service) Transfer(ctx context.Context, tx repository.Repos, productID, originID, destID string, qty int64) error {
	if qty <= 0 {
		return domain.InvalidMovement("la cantidad debe ser un entero positivo")
	}
	if originID == destID {
		return domain.InvalidMovement("origen y destino deben ser distintos")
	}
	first, second := originID, destID
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*entity.StockLocation, 2)
	for _, wh := range []string{first, second} {
		loc, err := s.lockOrCreate(ctx, tx, productID, wh)
		if err != nil {
			return err
		}
		if !loc.Active {
			return domain.InvalidMovement(fmt.Sprintf("la ubicación %s/%s está inactiva", productID, wh))
		}
		locked[wh] = loc
	}
	if origin := locked[originID]; origin.Stock < qty {
		return &domain.InsufficientStockError{ProductID: productID, WarehouseID: originID, Requested: qty, Available: origin.Stock}
	}
	if _, err := s.AdjustStock(ctx, tx, productID, originID, -qty); err != nil {
		return err
	}
	_, err := s.AdjustStock(ctx, tx, productID, destID, qty)
	return err
}

func (s *Service) lockOrCreate(ctx context.Context, tx repository.Repos, productID, warehouseID string) (*entity.StockLocation, error) {
	loc, err := tx.Locations.GetForUpdate(ctx, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("bloquear ubicación: %w", err)
	}
	if loc != nil {
		return loc, nil
	}
	if err := tx.Locations.Create(ctx, &entity.StockLocation{ProductID: productID, WarehouseID: warehouseID, Active: true}); err != nil {
		return nil, fmt.Errorf("crear ubicación: %w", err)
	}
	loc, err = tx.Locations.GetForUpdate(ctx, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("bloquear ubicación: %w", err)
	}
	if loc == nil {
		return nil, domain.NewNotFound("ubicación", productID+"/"+warehouseID)
	}
	return loc, nil
}

// ListLocations devuelve todas las ubicaciones del producto, activas o no.
func (s *Service) ListLocations(ctx context.Context, productID string) ([]*entity.StockLocation, error) {
	return s.repos.Locations.ListByProduct(ctx, productID)
}

// SetLocationActive activa o desactiva una ubicación y recalcula el stock del producto.
func (s *Service) SetLocationActive(ctx context.Context, productID, warehouseID string, active bool) (*entity.StockLocation, error) {
	var out *entity.StockLocation
	err := s.txRunner.Run(ctx, func(tx repository.Repos) error {
		loc, err := tx.Locations.GetForUpdate(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.NewNotFound("ubicación", productID+"/"+warehouseID)
		}
		if err := tx.Locations.SetActive(ctx, loc.ID, active); err != nil {
			return err
		}
		if _, err := tx.Products.RecalculateStock(ctx, productID); err != nil {
			return err
		}
		loc.Active = active
		out = loc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", productID).Str("warehouse_id", warehouseID).Bool("active", active).Msg("ubicación actualizada")
	return out, nil
}

// SetLocationMinStock fija (o quita con nil) el mínimo propio de la ubicación.
func (s *Service) SetLocationMinStock(ctx context.Context, productID, warehouseID string, min *int64) (*entity.StockLocation, error) {
	if min != nil && *min < 0 {
		return nil, domain.InvalidInput("el mínimo no puede ser negativo")
	}
	var out *entity.StockLocation
	err := s.txRunner.Run(ctx, func(tx repository.Repos) error {
		loc, err := tx.Locations.GetForUpdate(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.NewNotFound("ubicación", productID+"/"+warehouseID)
		}
		if err := tx.Locations.SetMinStock(ctx, loc.ID, min); err != nil {
			return err
		}
		loc.MinStock = min
		out = loc
		return nil
	})
	return out, err
}

// BelowMinimum lista las ubicaciones activas del producto por debajo de su mínimo
// (el propio de la ubicación o, si no tiene, el del producto).
func (s *Service) BelowMinimum(ctx context.Context, productID string) ([]*entity.StockLocation, error) {
	product, err := s.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("producto", productID)
	}
	locs, err := s.repos.Locations.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	var out []*entity.StockLocation
	for _, l := range locs {
		if l.Active && l.BelowMinimum(product.MinStock) {
			out = append(out, l)
		}
	}
	return out, nil
}
