package tool

import (
	"fmt"
	"math"
	"strings"

	portfoliox "github.com/tanpawarit/wealth-advisor-agent/agent/portfolio"
)

type DiversificationScore struct {
	OverallScore      float64
	SectorScore       float64
	GeographyScore    float64
	AssetClassScore   float64
	ConcentrationRisk string
	Recommendations   []string
	Breakdown         map[string]map[string]float64
}

func (s DiversificationScore) Dict() map[string]any {
	return map[string]any{
		"overall_score":               round1(s.OverallScore),
		"sector_diversification":      round1(s.SectorScore),
		"geography_diversification":   round1(s.GeographyScore),
		"asset_class_diversification": round1(s.AssetClassScore),
		"concentration_risk":          s.ConcentrationRisk,
		"recommendations":             s.Recommendations,
		"breakdown":                   s.Breakdown,
	}
}

func (s DiversificationScore) Summary() string {
	var recs []string
	for i, r := range s.Recommendations {
		if i == 5 {
			break
		}
		recs = append(recs, "- "+r)
	}

	var breakdown strings.Builder
	for _, category := range []string{"asset_class", "sector", "geography"} {
		allocations, ok := s.Breakdown[category]
		if !ok {
			continue
		}
		fmt.Fprintf(&breakdown, "\n**%s**:\n", titleWords(category))
		for i, item := range sortedKeysByWeight(allocations) {
			if i == 5 {
				break
			}
			fmt.Fprintf(&breakdown, "  - %s: %.1f%%\n", item, allocations[item])
		}
	}

	return fmt.Sprintf(`**Diversification Analysis**

**Overall Score**: %.0f/100

**Category Scores**:
- Asset Class Diversification: %.0f/100
- Sector Diversification: %.0f/100
- Geographic Diversification: %.0f/100

**Concentration Risk**: %s

**Portfolio Breakdown**:
%s
**Recommendations**:
%s
`,
		s.OverallScore,
		s.AssetClassScore,
		s.SectorScore,
		s.GeographyScore,
		s.ConcentrationRisk,
		breakdown.String(),
		strings.Join(recs, "\n"),
	)
}

// AnalyzeDiversification scores how evenly the portfolio spreads across
// asset classes, sectors, and geographies, and flags concentration risk.
func AnalyzeDiversification(holdings []portfoliox.Holding) DiversificationScore {
	if len(holdings) == 0 {
		return DiversificationScore{
			ConcentrationRisk: "No holdings",
			Recommendations:   []string{"Add investments to begin diversification"},
			Breakdown:         map[string]map[string]float64{},
		}
	}

	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	if total == 0 {
		return DiversificationScore{
			ConcentrationRisk: "No value",
			Recommendations:   []string{"Portfolio has no value"},
			Breakdown:         map[string]map[string]float64{},
		}
	}

	assetClassAlloc := map[string]float64{}
	sectorAlloc := map[string]float64{}
	geographyAlloc := map[string]float64{}
	maxHoldingWeight := 0.0

	for _, h := range holdings {
		weight := h.Value / total * 100
		if weight > maxHoldingWeight {
			maxHoldingWeight = weight
		}
		assetClassAlloc[orUnknown(h.AssetClass)] += weight
		sectorAlloc[orUnknown(h.Sector)] += weight
		geographyAlloc[orUnknown(h.Geography)] += weight
	}

	assetClassScore := diversityScore(assetClassAlloc)
	sectorScore := diversityScore(sectorAlloc)
	geographyScore := diversityScore(geographyAlloc)
	overall := assetClassScore*0.4 + sectorScore*0.35 + geographyScore*0.25

	maxSectorWeight := 0.0
	for _, w := range sectorAlloc {
		if w > maxSectorWeight {
			maxSectorWeight = w
		}
	}

	var concentration string
	switch {
	case maxHoldingWeight > 50 || maxSectorWeight > 60:
		concentration = "HIGH - Significant concentration in single positions"
	case maxHoldingWeight > 25 || maxSectorWeight > 40:
		concentration = "MODERATE - Some concentration present"
	default:
		concentration = "LOW - Well diversified"
	}

	var recommendations []string
	if len(assetClassAlloc) < 3 {
		recommendations = append(recommendations, "Consider adding more asset classes (bonds, real estate, commodities)")
	}
	if assetClassAlloc["equity"] > 80 {
		recommendations = append(recommendations, "High equity allocation - consider adding bonds for stability")
	}
	if assetClassAlloc["cash"] > 30 {
		recommendations = append(recommendations, "High cash position - consider deploying to growth assets")
	}
	if geographyAlloc["unknown"] > 50 || len(geographyAlloc) < 2 {
		recommendations = append(recommendations, "Add international exposure for geographic diversification")
	}
	if maxHoldingWeight > 20 {
		recommendations = append(recommendations, "Consider reducing largest positions to below 20% each")
	}
	if sectorAlloc["technology"] > 40 {
		recommendations = append(recommendations, "Heavy tech concentration - diversify into other sectors")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Portfolio is well diversified - maintain current allocation")
	}

	return DiversificationScore{
		OverallScore:      overall,
		SectorScore:       sectorScore,
		GeographyScore:    geographyScore,
		AssetClassScore:   assetClassScore,
		ConcentrationRisk: concentration,
		Recommendations:   recommendations,
		Breakdown: map[string]map[string]float64{
			"asset_class": assetClassAlloc,
			"sector":      sectorAlloc,
			"geography":   geographyAlloc,
		},
	}
}

// diversityScore rates an allocation map 0-100: evenness minus a
// concentration penalty plus a small bonus for category count.
func diversityScore(allocations map[string]float64) float64 {
	if len(allocations) <= 1 {
		return 0
	}

	maxWeight := 0.0
	for _, w := range allocations {
		if w > maxWeight {
			maxWeight = w
		}
	}

	n := float64(len(allocations))
	concentrationPenalty := (maxWeight - 40) * 1.5
	if concentrationPenalty < 0 {
		concentrationPenalty = 0
	}

	categoryBonus := n * 10
	if categoryBonus > 30 {
		categoryBonus = 30
	}

	ideal := 100 / n
	var deviation float64
	for _, w := range allocations {
		deviation += abs(w - ideal)
	}
	deviation /= n

	evenness := 50 - deviation
	if evenness < 0 {
		evenness = 0
	}

	score := evenness + categoryBonus - concentrationPenalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Trade is one recommended rebalancing action.
type Trade struct {
	Action string  `json:"action"`
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// DefaultTargetAllocation is the balanced allocation used when the caller
// gives no target.
func DefaultTargetAllocation() map[string]float64 {
	return map[string]float64{
		"equity":      0.60,
		"bond":        0.25,
		"cash":        0.05,
		"real_estate": 0.05,
		"commodity":   0.05,
	}
}

// SuggestRebalancing compares current asset-class weights against the target
// and emits buy/sell trades for drifts beyond a 2% band. A nil target uses
// DefaultTargetAllocation.
func SuggestRebalancing(holdings []portfoliox.Holding, target map[string]float64) []Trade {
	if target == nil {
		target = DefaultTargetAllocation()
	}

	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	if total == 0 {
		return nil
	}

	current := map[string]float64{}
	for _, h := range holdings {
		current[orUnknown(h.AssetClass)] += h.Value / total
	}

	var trades []Trade
	for _, class := range sortedKeysByWeight(target) {
		targetPct := target[class]
		currentPct := current[class]
		diff := targetPct - currentPct
		if abs(diff) < 0.02 {
			continue
		}

		amount := abs(diff * total)
		if diff > 0 {
			trades = append(trades, Trade{
				Action: "buy",
				Symbol: strings.ToUpper(class),
				Name:   titleWords(class) + " ETF",
				Amount: amount,
				Reason: fmt.Sprintf("Increase %s allocation from %.1f%% to %.1f%%", class, currentPct*100, targetPct*100),
			})
		} else {
			trades = append(trades, Trade{
				Action: "sell",
				Symbol: strings.ToUpper(class),
				Name:   titleWords(class) + " holdings",
				Amount: amount,
				Reason: fmt.Sprintf("Reduce %s allocation from %.1f%% to %.1f%%", class, currentPct*100, targetPct*100),
			})
		}
	}
	return trades
}

// AnalyzeDiversificationTool is the registry wrapper: JSON holdings in,
// formatted analysis out.
func AnalyzeDiversificationTool(jsonText string) string {
	holdings, err := decodeHoldings(jsonText)
	if err != nil {
		return fmt.Sprintf("Error analyzing diversification: %v", err)
	}
	return AnalyzeDiversification(holdings).Summary()
}

// SuggestRebalancingTool is the registry wrapper for rebalancing advice.
func SuggestRebalancingTool(jsonText string) string {
	holdings, err := decodeHoldings(jsonText)
	if err != nil {
		return fmt.Sprintf("Error generating rebalancing suggestions: %v", err)
	}

	trades := SuggestRebalancing(holdings, nil)
	if len(trades) == 0 {
		return "Portfolio is well-balanced. No rebalancing needed."
	}

	var sb strings.Builder
	sb.WriteString("**Rebalancing Recommendations**\n\n")
	for _, trade := range trades {
		fmt.Fprintf(&sb, "**%s** %s of %s\n", strings.ToUpper(trade.Action), money(trade.Amount), trade.Name)
		fmt.Fprintf(&sb, "   Reason: %s\n\n", trade.Reason)
	}
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
