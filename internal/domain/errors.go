package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los errores con detalle (más abajo) envuelven a estos centinelas,
// así que el llamador siempre puede usar errors.Is.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidMovement        = errors.New("movimiento inválido")
	ErrIncompletePayment      = errors.New("pago incompleto")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrDuplicateCode          = errors.New("código de movimiento duplicado")
)

// InsufficientStockError detalla un rechazo por falta de stock en una ubicación.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s en bodega %s: solicitado %d, disponible %d",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// IncompletePaymentError se devuelve al finalizar una venta al contado sin cubrir el total.
type IncompletePaymentError struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Tolerance decimal.Decimal
}

func (e *IncompletePaymentError) Error() string {
	return fmt.Sprintf("pago incompleto: total %s, pagado %s (tolerancia %s)",
		e.Total.StringFixed(2), e.Paid.StringFixed(2), e.Tolerance.StringFixed(2))
}

func (e *IncompletePaymentError) Unwrap() error { return ErrIncompletePayment }

// StateTransitionError indica una acción no permitida para el estado actual de una venta.
type StateTransitionError struct {
	SaleID string
	From   string
	Action string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("venta %s en estado %s no admite la acción %q", e.SaleID, e.From, e.Action)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// NotFoundError identifica el recurso ausente.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidMovement envuelve ErrInvalidMovement con el motivo concreto.
func InvalidMovement(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidMovement, reason)
}

// InvalidInput envuelve ErrInvalidInput con el motivo concreto.
func InvalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}
