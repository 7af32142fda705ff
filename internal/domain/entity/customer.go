package entity

import "time"

// Customer representa un cliente. Las ventas copian su nombre al crearse.
type Customer struct {
	ID        string
	Name      string
	TaxID     string // RUC o DNI
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
