package purchases

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

func TestComputePriceMeasuredMetric(t *testing.T) {
	price, total := ComputePrice(enums.MetricKilogram, 6000, decimal.NewFromInt(3), true)
	if price != 2000 {
		t.Fatalf("expected unit price 2000, got %d", price)
	}
	if total != 6000 {
		t.Fatalf("expected total 6000, got %d", total)
	}
}

func TestComputePriceRoundsToMinorUnit(t *testing.T) {
	price, total := ComputePrice(enums.MetricKilogram, 10000, decimal.NewFromInt(3), true)
	if price != 3333 {
		t.Fatalf("expected unit price 3333, got %d", price)
	}
	if total != 10000 {
		t.Fatalf("expected total 10000, got %d", total)
	}
}

func TestComputePriceNominal(t *testing.T) {
	price, total := ComputePrice(enums.MetricNominal, 5000, decimal.NewFromInt(4), true)
	if price != 5000 || total != 5000 {
		t.Fatalf("expected nominal amount carried as-is, got price=%d total=%d", price, total)
	}
}

func TestComputePriceNotFound(t *testing.T) {
	price, total := ComputePrice(enums.MetricKilogram, 6000, decimal.NewFromInt(3), false)
	if price != 0 || total != 0 {
		t.Fatalf("a missing line never carries money, got price=%d total=%d", price, total)
	}
}

func TestComputePriceZeroQuantity(t *testing.T) {
	price, total := ComputePrice(enums.MetricKilogram, 6000, decimal.Zero, true)
	if price != 6000 || total != 6000 {
		t.Fatalf("expected amount passthrough on zero quantity, got price=%d total=%d", price, total)
	}
}
