package tool

import (
	"strings"
	"testing"

	portfoliox "github.com/tanpawarit/wealth-advisor-agent/agent/portfolio"
)

func TestAnalyzeDiversificationWellDiversified(t *testing.T) {
	t.Parallel()

	holdings := []portfoliox.Holding{
		{Symbol: "VTI", Value: 25000, AssetClass: "equity", Sector: "technology", Geography: "US"},
		{Symbol: "VXUS", Value: 20000, AssetClass: "equity", Sector: "diversified", Geography: "International"},
		{Symbol: "BND", Value: 25000, AssetClass: "bond", Sector: "bonds", Geography: "US"},
		{Symbol: "VNQ", Value: 15000, AssetClass: "real_estate", Sector: "reit", Geography: "US"},
		{Symbol: "GLD", Value: 15000, AssetClass: "commodity", Sector: "gold", Geography: "Global"},
	}

	s := AnalyzeDiversification(holdings)

	if s.OverallScore <= 50 {
		t.Fatalf("overall score = %v, want > 50", s.OverallScore)
	}
	if s.AssetClassScore <= 40 {
		t.Fatalf("asset class score = %v, want > 40", s.AssetClassScore)
	}
	if !strings.Contains(s.ConcentrationRisk, "LOW") {
		t.Fatalf("concentration = %q", s.ConcentrationRisk)
	}
}

func TestAnalyzeDiversificationConcentrated(t *testing.T) {
	t.Parallel()

	holdings := []portfoliox.Holding{
		{Symbol: "AAPL", Value: 80000, AssetClass: "equity", Sector: "technology", Geography: "US"},
		{Symbol: "MSFT", Value: 20000, AssetClass: "equity", Sector: "technology", Geography: "US"},
	}

	s := AnalyzeDiversification(holdings)

	if s.AssetClassScore >= 30 {
		t.Fatalf("asset class score = %v, want < 30", s.AssetClassScore)
	}
	if !strings.Contains(s.ConcentrationRisk, "HIGH") && !strings.Contains(s.ConcentrationRisk, "MODERATE") {
		t.Fatalf("concentration = %q", s.ConcentrationRisk)
	}
}

func TestAnalyzeDiversificationEmpty(t *testing.T) {
	t.Parallel()

	s := AnalyzeDiversification(nil)
	if s.OverallScore != 0 {
		t.Fatalf("overall score = %v", s.OverallScore)
	}
	if s.ConcentrationRisk != "No holdings" {
		t.Fatalf("concentration = %q", s.ConcentrationRisk)
	}
}

func TestSuggestRebalancingEquityHeavy(t *testing.T) {
	t.Parallel()

	holdings := []portfoliox.Holding{
		{Symbol: "VTI", Value: 90000, AssetClass: "equity"},
		{Symbol: "BND", Value: 10000, AssetClass: "bond"},
	}

	trades := SuggestRebalancing(holdings, nil)
	if len(trades) == 0 {
		t.Fatal("expected trades")
	}

	var sellEquity, buyBond bool
	for _, tr := range trades {
		if tr.Action == "sell" && strings.EqualFold(tr.Symbol, "equity") {
			sellEquity = true
		}
		if tr.Action == "buy" && strings.EqualFold(tr.Symbol, "bond") {
			buyBond = true
		}
	}
	if !sellEquity {
		t.Fatalf("expected a sell-equity trade, got %+v", trades)
	}
	if !buyBond {
		t.Fatalf("expected a buy-bond trade, got %+v", trades)
	}
}

func TestSuggestRebalancingWithinBand(t *testing.T) {
	t.Parallel()

	// Exactly on target: no trades.
	holdings := []portfoliox.Holding{
		{Symbol: "VTI", Value: 60000, AssetClass: "equity"},
		{Symbol: "BND", Value: 25000, AssetClass: "bond"},
		{Symbol: "CASH", Value: 5000, AssetClass: "cash"},
		{Symbol: "VNQ", Value: 5000, AssetClass: "real_estate"},
		{Symbol: "GLD", Value: 5000, AssetClass: "commodity"},
	}

	if trades := SuggestRebalancing(holdings, nil); len(trades) != 0 {
		t.Fatalf("expected no trades, got %+v", trades)
	}
}

func TestSuggestRebalancingToolBalanced(t *testing.T) {
	t.Parallel()

	out := SuggestRebalancingTool(`[]`)
	if !strings.Contains(out, "No rebalancing needed") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestAnalyzeDiversificationToolMalformed(t *testing.T) {
	t.Parallel()

	out := AnalyzeDiversificationTool(`{{`)
	if !strings.HasPrefix(out, "Error") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestDiversityScoreSingleCategory(t *testing.T) {
	t.Parallel()

	if got := diversityScore(map[string]float64{"equity": 100}); got != 0 {
		t.Fatalf("single category score = %v, want 0", got)
	}
}
