package inventory

import "github.com/jhoicas/inventario-ventas/internal/domain/entity"

// Metrics recibe los eventos del kardex. La implementación con Prometheus vive en infrastructure/metrics.
type Metrics interface {
	MovementRecorded(t entity.MovementType)
	MovementRejected(t entity.MovementType, reason string)
}

type nopMetrics struct{}

func (nopMetrics) MovementRecorded(entity.MovementType)         {}
func (nopMetrics) MovementRejected(entity.MovementType, string) {}

// NopMetrics descarta los eventos.
var NopMetrics Metrics = nopMetrics{}
