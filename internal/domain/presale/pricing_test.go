package presale

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFinalPrice(t *testing.T) {
	t.Run("applies markup percentage to base", func(t *testing.T) {
		got := FinalPrice(decimal.NewFromInt(5), decimal.NewFromInt(15))
		assert.Equal(t, "5.75", got.StringFixed(2))
	})

	t.Run("zero markup returns base", func(t *testing.T) {
		got := FinalPrice(decimal.NewFromInt(10), decimal.Zero)
		assert.True(t, got.Equal(decimal.NewFromInt(10)))
	})

	t.Run("zero base returns zero", func(t *testing.T) {
		got := FinalPrice(decimal.Zero, decimal.NewFromInt(50))
		assert.True(t, got.IsZero())
	})
}

func TestMarkupFromFinal(t *testing.T) {
	t.Run("back-solves the markup", func(t *testing.T) {
		got := MarkupFromFinal(decimal.NewFromInt(5), decimal.NewFromFloat(5.75))
		assert.Equal(t, "15.00", got.StringFixed(2))
	})

	t.Run("zero base yields zero markup", func(t *testing.T) {
		got := MarkupFromFinal(decimal.Zero, decimal.NewFromInt(100))
		assert.True(t, got.IsZero())
	})

	t.Run("final below base yields negative markup", func(t *testing.T) {
		got := MarkupFromFinal(decimal.NewFromInt(10), decimal.NewFromInt(5))
		assert.Equal(t, "-50.00", got.StringFixed(2))
	})
}

func TestEffectivePrice(t *testing.T) {
	preSale := decimal.NewFromInt(80)
	normal := decimal.NewFromInt(90)
	derived := decimal.NewFromInt(100)

	t.Run("pre-sale price wins while active", func(t *testing.T) {
		got := EffectivePrice(LotStatusActive, preSale, normal, derived)
		assert.True(t, got.Equal(preSale))
	})

	t.Run("pre-sale price ignored once past active", func(t *testing.T) {
		got := EffectivePrice(LotStatusReceived, preSale, normal, derived)
		assert.True(t, got.Equal(normal))
	})

	t.Run("normal price wins when pre-sale unset", func(t *testing.T) {
		got := EffectivePrice(LotStatusActive, decimal.Zero, normal, derived)
		assert.True(t, got.Equal(normal))
	})

	t.Run("falls back to markup-derived price", func(t *testing.T) {
		got := EffectivePrice(LotStatusActive, decimal.Zero, decimal.Zero, derived)
		assert.True(t, got.Equal(derived))
	})
}

func TestComputeTotals(t *testing.T) {
	t.Run("derives sale, cost and profit together", func(t *testing.T) {
		totals := ComputeTotals(decimal.NewFromFloat(5.75), decimal.NewFromInt(5), 10)

		assert.Equal(t, "57.50", totals.SaleAmount.StringFixed(2))
		assert.Equal(t, "50.00", totals.CostAmount.StringFixed(2))
		assert.Equal(t, "7.50", totals.Profit.StringFixed(2))
	})

	t.Run("zero quantity zeroes every total", func(t *testing.T) {
		totals := ComputeTotals(decimal.NewFromInt(10), decimal.NewFromInt(5), 0)

		assert.True(t, totals.SaleAmount.IsZero())
		assert.True(t, totals.CostAmount.IsZero())
		assert.True(t, totals.Profit.IsZero())
	})

	t.Run("profit is negative when price undercuts cost", func(t *testing.T) {
		totals := ComputeTotals(decimal.NewFromInt(4), decimal.NewFromInt(5), 3)

		assert.Equal(t, "-3.00", totals.Profit.StringFixed(2))
	})
}
