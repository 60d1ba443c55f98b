package purchases

import (
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// ComputePrice derives the unit price and total for a purchase line. For
// measured metrics the unit price is the paid amount divided by the quantity,
// rounded to the nearest minor unit; nominal lines carry the amount as-is.
// A line that was not found never carries money.
func ComputePrice(metric enums.Metric, amount int64, quantity decimal.Decimal, found bool) (price int64, total int64) {
	if !found {
		return 0, 0
	}
	if metric != enums.MetricNominal && amount > 0 && quantity.IsPositive() {
		price = decimal.NewFromInt(amount).Div(quantity).Round(0).IntPart()
		return price, amount
	}
	return amount, amount
}
