package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ventas/internal/domain"
)

// MovementType clasifica una entrada del kardex.
type MovementType string

const (
	MovementInbound    MovementType = "INBOUND"    // entrada
	MovementOutbound   MovementType = "OUTBOUND"   // salida
	MovementTransfer   MovementType = "TRANSFER"   // traslado entre bodegas
	MovementAdjustment MovementType = "ADJUSTMENT" // ajuste de inventario
)

// Prefijos de código diario.
const (
	MovementCodePrefix = "MOV"
	SaleCodePrefix     = "VEN"
)

// Valid reporta si t es un tipo conocido.
func (t MovementType) Valid() bool {
	switch t {
	case MovementInbound, MovementOutbound, MovementTransfer, MovementAdjustment:
		return true
	}
	return false
}

// Movement es una entrada inmutable del kardex.
// Inbound solo tiene destino, Outbound solo origen, Transfer ambos (distintos),
// Adjustment exactamente uno de los dos.
type Movement struct {
	ID                string
	Code              string // MOV-yyyyMMdd-0001
	ProductID         string
	OriginWarehouseID string
	DestWarehouseID   string
	Type              MovementType
	Quantity          int64
	Reason            string
	Actor             string
	Reference         string // id de la venta que lo originó, si aplica
	OccurredAt        time.Time
	CreatedAt         time.Time
}

// Validate comprueba la forma del movimiento según su tipo.
func (m *Movement) Validate() error {
	if m.ProductID == "" {
		return domain.InvalidMovement("producto requerido")
	}
	if m.Quantity <= 0 {
		return domain.InvalidMovement("la cantidad debe ser un entero positivo")
	}
	hasOrigin := m.OriginWarehouseID != ""
	hasDest := m.DestWarehouseID != ""
	switch m.Type {
	case MovementInbound:
		if hasOrigin || !hasDest {
			return domain.InvalidMovement("una entrada solo tiene bodega destino")
		}
	case MovementOutbound:
		if !hasOrigin || hasDest {
			return domain.InvalidMovement("una salida solo tiene bodega origen")
		}
	case MovementTransfer:
		if !hasOrigin || !hasDest {
			return domain.InvalidMovement("un traslado requiere origen y destino")
		}
		if m.OriginWarehouseID == m.DestWarehouseID {
			return domain.InvalidMovement("origen y destino deben ser distintos")
		}
	case MovementAdjustment:
		if hasOrigin == hasDest {
			return domain.InvalidMovement("un ajuste tiene exactamente una bodega")
		}
	default:
		return domain.InvalidMovement(fmt.Sprintf("tipo desconocido %q", m.Type))
	}
	return nil
}

// StockEffect es el cambio con signo que un movimiento aplica a una bodega.
type StockEffect struct {
	WarehouseID string
	Delta       int64
}

// Effects devuelve los deltas por bodega: el origen pierde, el destino gana.
func (m *Movement) Effects() []StockEffect {
	var out []StockEffect
	if m.OriginWarehouseID != "" {
		out = append(out, StockEffect{WarehouseID: m.OriginWarehouseID, Delta: -m.Quantity})
	}
	if m.DestWarehouseID != "" {
		out = append(out, StockEffect{WarehouseID: m.DestWarehouseID, Delta: m.Quantity})
	}
	return out
}

// Replay aplica los movimientos en orden sobre stock inicial cero y devuelve el stock por bodega.
func Replay(movements []*Movement) map[string]int64 {
	stock := make(map[string]int64)
	for _, m := range movements {
		for _, e := range m.Effects() {
			stock[e.WarehouseID] += e.Delta
		}
	}
	return stock
}

// DailyCode arma un código PREFIJO-yyyyMMdd-NNNN.
func DailyCode(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}

// DayKey es la parte de fecha de un código diario.
func DayKey(prefix string, day time.Time) string {
	return prefix + "-" + day.Format("20060102")
}
