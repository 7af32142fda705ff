// Package settlement contiene las reglas de liquidación de ventas: impuesto incluido,
// normalización de monedas, tolerancia de pago al contado y cuotas.
package settlement

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rules agrupa los parámetros de liquidación.
type Rules struct {
	TaxRate           decimal.Decimal // 0.18
	CashTolerance     decimal.Decimal // banda absoluta, sin importar la moneda
	BaseCurrency      string          // PEN
	SecondaryCurrency string          // USD
}

// DefaultRules devuelve IGV 18%, tolerancia 0.10, PEN/USD.
func DefaultRules() Rules {
	return Rules{
		TaxRate:           decimal.RequireFromString("0.18"),
		CashTolerance:     decimal.RequireFromString("0.10"),
		BaseCurrency:      "PEN",
		SecondaryCurrency: "USD",
	}
}

// Round2 redondea a 2 decimales, mitad hacia arriba.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineSubtotal = round2(qty × precio × (1 − descuento/100)).
func LineSubtotal(qty int64, unitPrice, discountPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	return Round2(decimal.NewFromInt(qty).Mul(unitPrice).Mul(factor))
}

// Totals es el desglose de una venta.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// SplitInclusive separa un total con impuesto incluido: Subtotal = round2(total/(1+tasa)),
// Tax = total − Subtotal, así Subtotal + Tax == Total siempre.
func (r Rules) SplitInclusive(lineSubtotals ...decimal.Decimal) Totals {
	total := decimal.Zero
	for _, s := range lineSubtotals {
		total = total.Add(s)
	}
	total = Round2(total)
	base := Round2(total.Div(decimal.NewFromInt(1).Add(r.TaxRate)))
	return Totals{Subtotal: base, Tax: total.Sub(base), Total: total}
}

// Normalize convierte un pago a la moneda de la venta.
// Misma moneda: sin cambio. Venta en base y pago en secundaria: × tasa.
// Venta en secundaria y pago en base: ÷ tasa. Si la tasa es cero o el par no se conoce,
// el monto pasa sin cambio y ok es false para que el llamador marque la conciliación.
func (r Rules) Normalize(amount decimal.Decimal, paymentCurrency, saleCurrency string, rate decimal.Decimal) (decimal.Decimal, bool) {
	pc := strings.ToUpper(paymentCurrency)
	sc := strings.ToUpper(saleCurrency)
	if pc == sc {
		return Round2(amount), true
	}
	if rate.Sign() <= 0 {
		return Round2(amount), false
	}
	switch {
	case sc == r.BaseCurrency && pc == r.SecondaryCurrency:
		return Round2(amount.Mul(rate)), true
	case sc == r.SecondaryCurrency && pc == r.BaseCurrency:
		return Round2(amount.Div(rate)), true
	}
	return Round2(amount), false
}

// CoversCash indica si lo pagado cubre el total dentro de la tolerancia.
func (r Rules) CoversCash(total, paid decimal.Decimal) bool {
	return paid.GreaterThanOrEqual(total.Sub(r.CashTolerance))
}

// Outstanding = max(total − pagado, 0).
func Outstanding(total, paid decimal.Decimal) decimal.Decimal {
	out := Round2(total.Sub(paid))
	if out.Sign() < 0 {
		return decimal.Zero
	}
	return out
}

// InstallmentAmount = round2(saldo / cuotas). Con cuotas < 1 se toma una sola.
func InstallmentAmount(outstanding decimal.Decimal, installments int) decimal.Decimal {
	if installments < 1 {
		installments = 1
	}
	return Round2(outstanding.Div(decimal.NewFromInt(int64(installments))))
}
