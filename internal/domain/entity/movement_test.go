package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ventas/internal/domain"
	"github.com/jhoicas/inventario-ventas/internal/domain/entity"
)

func TestMovementValidate_Formas(t *testing.T) {
	cases := []struct {
		name  string
		m     entity.Movement
		valid bool
	}{
		{"entrada ok", entity.Movement{Type: entity.MovementInbound, DestWarehouseID: "b1"}, true},
		{"entrada con origen", entity.Movement{Type: entity.MovementInbound, OriginWarehouseID: "b1", DestWarehouseID: "b2"}, false},
		{"salida ok", entity.Movement{Type: entity.MovementOutbound, OriginWarehouseID: "b1"}, true},
		{"salida sin origen", entity.Movement{Type: entity.MovementOutbound, DestWarehouseID: "b1"}, false},
		{"traslado ok", entity.Movement{Type: entity.MovementTransfer, OriginWarehouseID: "b1", DestWarehouseID: "b2"}, true},
		{"traslado misma bodega", entity.Movement{Type: entity.MovementTransfer, OriginWarehouseID: "b1", DestWarehouseID: "b1"}, false},
		{"ajuste destino", entity.Movement{Type: entity.MovementAdjustment, DestWarehouseID: "b1"}, true},
		{"ajuste origen", entity.Movement{Type: entity.MovementAdjustment, OriginWarehouseID: "b1"}, true},
		{"ajuste ambos", entity.Movement{Type: entity.MovementAdjustment, OriginWarehouseID: "b1", DestWarehouseID: "b2"}, false},
		{"ajuste ninguno", entity.Movement{Type: entity.MovementAdjustment}, false},
		{"tipo desconocido", entity.Movement{Type: "X", DestWarehouseID: "b1"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.m
			m.ProductID = "p1"
			m.Quantity = 1
			err := m.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInvalidMovement), "err = %v", err)
		})
	}
}

func TestMovementValidate_CantidadPositiva(t *testing.T) {
	m := entity.Movement{ProductID: "p1", Type: entity.MovementInbound, DestWarehouseID: "b1", Quantity: 0}
	assert.ErrorIs(t, m.Validate(), domain.ErrInvalidMovement)
}

func TestReplay_ReconstruyeStock(t *testing.T) {
	movs := []*entity.Movement{
		{Type: entity.MovementInbound, DestWarehouseID: "b1", Quantity: 10},
		{Type: entity.MovementTransfer, OriginWarehouseID: "b1", DestWarehouseID: "b2", Quantity: 4},
		{Type: entity.MovementOutbound, OriginWarehouseID: "b2", Quantity: 1},
		{Type: entity.MovementAdjustment, OriginWarehouseID: "b1", Quantity: 2},
	}

	stock := entity.Replay(movs)

	require.Len(t, stock, 2)
	assert.Equal(t, int64(4), stock["b1"])
	assert.Equal(t, int64(3), stock["b2"])
}

func TestDailyCode_Formato(t *testing.T) {
	day := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "MOV-20240307-0001", entity.DailyCode(entity.MovementCodePrefix, day, 1))
	assert.Equal(t, "VEN-20240307-0123", entity.DailyCode(entity.SaleCodePrefix, day, 123))
	assert.Equal(t, "MOV-20240307", entity.DayKey(entity.MovementCodePrefix, day))
}

func TestSaleRequire_TablaDeTransiciones(t *testing.T) {
	s := &entity.Sale{ID: "s1", Status: entity.SaleCompleted}

	assert.NoError(t, s.Require(entity.SaleActionCancel))
	err := s.Require(entity.SaleActionPay)
	var st *domain.StateTransitionError
	require.ErrorAs(t, err, &st)
	assert.Equal(t, "COMPLETED", st.From)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	s.Status = entity.SaleCancelled
	assert.Error(t, s.Require(entity.SaleActionCancel))
	s.Status = entity.SaleDraft
	assert.NoError(t, s.Require(entity.SaleActionEdit))
	assert.Error(t, s.Require(entity.SaleActionPay))
}
