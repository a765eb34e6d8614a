// Package pricing holds the purchase price allocator and the static
// rarity-based price estimates used when no live offer covers an item.
package pricing

import "github.com/shopspring/decimal"

// Allocate splits a quoted total across count line items so that the results
// sum to the total exactly at 2-decimal precision. Every item receives the
// 2-decimal floor of the even share; any rounding remainder is added to the
// last item, which absorbs all slack as a deterministic tie-break. A
// non-positive count yields nil.
func Allocate(total decimal.Decimal, count int) []decimal.Decimal {
	if count <= 0 {
		return nil
	}

	n := decimal.NewFromInt(int64(count))
	base := total.Div(n).RoundFloor(2)

	prices := make([]decimal.Decimal, count)
	for i := range prices {
		prices[i] = base
	}

	remainder := total.Sub(base.Mul(n)).Round(2)
	if !remainder.IsZero() {
		prices[count-1] = prices[count-1].Add(remainder).Round(2)
	}
	return prices
}
