package commit

import "github.com/shopspring/decimal"

// NewAverageCost returns the weighted moving average cost per base unit
// after adding baseQty units at unitCost. Oversold (negative) stock is
// clamped to zero so an anomaly cannot drag the average; a zero
// denominator resolves to the incoming unit cost. The result is rounded
// to 2 decimal places.
func NewAverageCost(oldStock, oldAvg, baseQty, unitCost float64) float64 {
	effective := decimal.NewFromFloat(oldStock)
	if effective.IsNegative() {
		effective = decimal.Zero
	}
	qty := decimal.NewFromFloat(baseQty)
	denom := effective.Add(qty)
	if denom.IsZero() {
		return round2(decimal.NewFromFloat(unitCost))
	}
	oldValue := effective.Mul(decimal.NewFromFloat(oldAvg))
	newValue := qty.Mul(decimal.NewFromFloat(unitCost))
	return round2(oldValue.Add(newValue).Div(denom))
}

// BaseUnitPrice converts a raw extracted line price into a per-base-unit
// cost. Extracted prices are line totals, so the total is divided by the
// purchase quantity and then by the purchase-to-base conversion rate.
// Zero guards degrade to the untouched total rather than failing.
func BaseUnitPrice(lineTotal, purchaseQty, conversionRate float64) float64 {
	total := decimal.NewFromFloat(lineTotal)
	qty := decimal.NewFromFloat(purchaseQty)
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	rate := decimal.NewFromFloat(conversionRate)
	if rate.IsZero() || rate.IsNegative() {
		rate = decimal.NewFromInt(1)
	}
	out, _ := total.Div(qty).Div(rate).Float64()
	return out
}

func round2(d decimal.Decimal) float64 {
	out, _ := d.Round(2).Float64()
	return out
}
