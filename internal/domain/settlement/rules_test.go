package settlement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ventas/internal/domain/settlement"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Totales con impuesto incluido
// ──────────────────────────────────────────────────────────────────────────────

func TestSplitInclusive_118DaBase100Impuesto18(t *testing.T) {
	r := settlement.DefaultRules()

	tot := r.SplitInclusive(dec("118.00"))

	assert.True(t, tot.Total.Equal(dec("118.00")))
	assert.True(t, tot.Subtotal.Equal(dec("100.00")))
	assert.True(t, tot.Tax.Equal(dec("18.00")))
}

// La suma base + impuesto siempre reproduce el total, aun con redondeo.
func TestSplitInclusive_SubtotalMasImpuestoIgualTotal(t *testing.T) {
	r := settlement.DefaultRules()
	for _, s := range []string{"0.01", "10.00", "99.99", "123.45", "1000.01", "7.77"} {
		tot := r.SplitInclusive(dec(s))
		assert.True(t, tot.Subtotal.Add(tot.Tax).Equal(tot.Total), "total %s", s)
		assert.True(t, tot.Subtotal.Equal(tot.Subtotal.Round(2)), "base con 2 decimales para %s", s)
	}
}

func TestSplitInclusive_SumaVariasLineas(t *testing.T) {
	r := settlement.DefaultRules()

	tot := r.SplitInclusive(dec("50.00"), dec("68.00"))

	assert.True(t, tot.Total.Equal(dec("118.00")))
	assert.True(t, tot.Subtotal.Equal(dec("100.00")))
}

func TestLineSubtotal_AplicaDescuento(t *testing.T) {
	assert.True(t, settlement.LineSubtotal(3, dec("10.00"), dec("10")).Equal(dec("27.00")))
	assert.True(t, settlement.LineSubtotal(1, dec("118.00"), decimal.Zero).Equal(dec("118.00")))
	// 3 × 3.335 = 10.005 → 10.01 (mitad hacia arriba)
	assert.True(t, settlement.LineSubtotal(3, dec("3.335"), decimal.Zero).Equal(dec("10.01")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Normalización de monedas
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalize_USDaPEN(t *testing.T) {
	r := settlement.DefaultRules()

	got, ok := r.Normalize(dec("100.00"), "USD", "PEN", dec("3.75"))

	assert.True(t, ok)
	assert.True(t, got.Equal(dec("375.00")), "got %s", got)
}

func TestNormalize_PENaUSDDivide(t *testing.T) {
	r := settlement.DefaultRules()

	got, ok := r.Normalize(dec("375.00"), "PEN", "USD", dec("3.75"))

	assert.True(t, ok)
	assert.True(t, got.Equal(dec("100.00")))
}

func TestNormalize_MismaMonedaSinCambio(t *testing.T) {
	r := settlement.DefaultRules()

	got, ok := r.Normalize(dec("42.50"), "pen", "PEN", decimal.Zero)

	assert.True(t, ok)
	assert.True(t, got.Equal(dec("42.50")))
}

func TestNormalize_TasaCeroPasaSinCambioYMarca(t *testing.T) {
	r := settlement.DefaultRules()

	got, ok := r.Normalize(dec("100.00"), "USD", "PEN", decimal.Zero)
	assert.False(t, ok)
	assert.True(t, got.Equal(dec("100.00")))

	got, ok = r.Normalize(dec("100.00"), "PEN", "USD", decimal.Zero)
	assert.False(t, ok)
	assert.True(t, got.Equal(dec("100.00")))
}

func TestNormalize_ParDesconocidoMarca(t *testing.T) {
	r := settlement.DefaultRules()

	_, ok := r.Normalize(dec("10.00"), "EUR", "PEN", dec("4.10"))

	assert.False(t, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Contado y crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestCoversCash_Tolerancia(t *testing.T) {
	r := settlement.DefaultRules()

	assert.True(t, r.CoversCash(dec("118.00"), dec("118.00")))
	assert.True(t, r.CoversCash(dec("118.00"), dec("117.90")))
	assert.False(t, r.CoversCash(dec("118.00"), dec("117.89")))
}

func TestOutstandingYCuotas(t *testing.T) {
	out := settlement.Outstanding(dec("300.00"), decimal.Zero)
	assert.True(t, out.Equal(dec("300.00")))
	assert.True(t, settlement.InstallmentAmount(out, 3).Equal(dec("100.00")))

	assert.True(t, settlement.Outstanding(dec("100.00"), dec("120.00")).IsZero(), "el saldo no baja de cero")
	assert.True(t, settlement.InstallmentAmount(dec("100.00"), 3).Equal(dec("33.33")))
	assert.True(t, settlement.InstallmentAmount(dec("100.00"), 0).Equal(dec("100.00")))
}
