package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty string", "", []string{}},
		{"single tag", "bond", []string{"bond"}},
		{"trims and drops empties", " bond, ,index ", []string{"bond", "index"}},
		{"full-width comma", "债券，指数", []string{"债券", "指数"}},
		{"duplicates keep first occurrence", "tech,bond,tech", []string{"tech", "bond"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.SplitTags(tt.in))
		})
	}
}

func TestValueHoldings(t *testing.T) {
	t.Run("values current position at latest nav", func(t *testing.T) {
		holdings := []model.Holding{{
			Code: "000001",
			Tag:  "tech",
			TradingRecords: []model.TradingRecord{
				buy("000001", "2024-01-02", 1.0, 1000),
				sell("000001", "2024-02-01", 1.5, 400, 200),
			},
		}}
		navs := ledger.NAVBook{"000001": {Latest: 1.4, Previous: 1.3, Recent: 1.2}}

		vals := ledger.ValueHoldings(holdings, navs)

		require.Len(t, vals, 1)
		v := vals[0]
		assert.True(t, v.Valued)
		assert.InDelta(t, 600, v.Shares, 1e-9)
		assert.InDelta(t, 600, v.CostBasis, 1e-9)
		assert.InDelta(t, 840, v.MarketValue, 1e-9)
		assert.InDelta(t, 240, v.HoldingProfit, 1e-9)
		assert.InDelta(t, 440, v.TotalProfit, 1e-9)
		assert.InDelta(t, 60, v.DailyProfit, 1e-9)
		assert.InDelta(t, 120, v.RecentProfit, 1e-9)
		assert.InDelta(t, 1040, v.CumulativeValue, 1e-9)
	})

	t.Run("holding without quote is not valued", func(t *testing.T) {
		holdings := []model.Holding{{
			Code:           "000009",
			TradingRecords: []model.TradingRecord{buy("000009", "2024-01-02", 1.0, 100)},
		}}

		vals := ledger.ValueHoldings(holdings, ledger.NAVBook{})

		assert.False(t, vals[0].Valued)
		assert.Equal(t, 0.0, vals[0].MarketValue)
		assert.InDelta(t, 100, vals[0].CostBasis, 1e-9)
	})
}

func TestAggregateByTag(t *testing.T) {
	valuations := []model.HoldingValuation{
		{Code: "A", Tag: "tech,growth", CostBasis: 100, MarketValue: 150, TotalProfit: 50, CumulativeValue: 150},
		{Code: "B", Tag: "tech", CostBasis: 300, MarketValue: 250, TotalProfit: -50, CumulativeValue: 250},
		{Code: "C", Tag: "", CostBasis: 100, MarketValue: 100, TotalProfit: 0, CumulativeValue: 100},
	}

	t.Run("holding contributes fully to each tag", func(t *testing.T) {
		tags := ledger.AggregateByTag(valuations)

		byTag := make(map[string]model.TagAnalysis)
		for _, tag := range tags {
			byTag[tag.Tag] = tag
		}

		require.Len(t, tags, 3)
		assert.Equal(t, 2, byTag["tech"].FundCount)
		assert.InDelta(t, 400, byTag["tech"].CostBasis, 1e-9)
		assert.Equal(t, 1, byTag["growth"].FundCount)
		assert.InDelta(t, 100, byTag["growth"].CostBasis, 1e-9)
		assert.Equal(t, 1, byTag[ledger.UntaggedLabel].FundCount)
	})

	t.Run("shares use portfolio totals counted once", func(t *testing.T) {
		tags := ledger.AggregateByTag(valuations)

		for _, tag := range tags {
			if tag.Tag == "growth" {
				assert.InDelta(t, 0.2, tag.CostShare, 1e-9)
				assert.InDelta(t, 0.3, tag.ValueShare, 1e-9)
			}
		}
	})

	t.Run("efficiency is NaN-safe when portfolio profit is zero", func(t *testing.T) {
		tags := ledger.AggregateByTag(valuations)

		for _, tag := range tags {
			assert.False(t, math.IsNaN(tag.CostEfficiency), tag.Tag)
			assert.False(t, math.IsInf(tag.ValueEfficiency, 0), tag.Tag)
			assert.Equal(t, 0.0, tag.ProfitShare, tag.Tag)
		}
	})

	t.Run("efficiency compares profit share with cost share", func(t *testing.T) {
		tags := ledger.AggregateByTag([]model.HoldingValuation{
			{Code: "A", Tag: "x", CostBasis: 100, MarketValue: 180, TotalProfit: 80},
			{Code: "B", Tag: "y", CostBasis: 100, MarketValue: 120, TotalProfit: 20},
		})

		require.Len(t, tags, 2)
		assert.Equal(t, "x", tags[0].Tag)
		assert.InDelta(t, 1.6, tags[0].CostEfficiency, 1e-9)
		assert.InDelta(t, 0.8/0.6, tags[0].ValueEfficiency, 1e-9)
	})

	t.Run("output is ordered by tag", func(t *testing.T) {
		tags := ledger.AggregateByTag(valuations)

		assert.Equal(t, "growth", tags[0].Tag)
		assert.Equal(t, "tech", tags[1].Tag)
		assert.Equal(t, ledger.UntaggedLabel, tags[2].Tag)
	})
}

func TestSortTags(t *testing.T) {
	tags := []model.TagAnalysis{
		{Tag: "a", TotalProfit: 10},
		{Tag: "b", TotalProfit: -30},
		{Tag: "c", TotalProfit: 10},
		{Tag: "d", TotalProfit: 20},
	}

	order := func(ts []model.TagAnalysis) []string {
		out := make([]string, len(ts))
		for i, tag := range ts {
			out[i] = tag.Tag
		}
		return out
	}

	t.Run("ascending keeps ties in input order", func(t *testing.T) {
		got, err := ledger.SortTags(tags, "totalProfit", ledger.SortAsc)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c", "d"}, order(got))
	})

	t.Run("descending keeps ties in input order", func(t *testing.T) {
		got, err := ledger.SortTags(tags, "totalProfit", ledger.SortDesc)
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "a", "c", "b"}, order(got))
	})

	t.Run("absolute ascending", func(t *testing.T) {
		got, err := ledger.SortTags(tags, "totalProfit", ledger.SortAbsAsc)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "d", "b"}, order(got))
	})

	t.Run("absolute descending", func(t *testing.T) {
		got, err := ledger.SortTags(tags, "totalProfit", ledger.SortAbsDesc)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "d", "a", "c"}, order(got))
	})

	t.Run("input is not modified", func(t *testing.T) {
		_, err := ledger.SortTags(tags, "totalProfit", ledger.SortDesc)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, order(tags))
	})

	t.Run("unknown key and order are rejected", func(t *testing.T) {
		_, err := ledger.SortTags(tags, "nope", ledger.SortAsc)
		assert.ErrorIs(t, err, apperrors.ErrUnknownSortKey)

		_, err = ledger.SortTags(tags, "totalProfit", "sideways")
		assert.ErrorIs(t, err, apperrors.ErrUnknownSortOrder)
	})
}
