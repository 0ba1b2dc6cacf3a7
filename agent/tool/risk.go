package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	portfoliox "github.com/tanpawarit/wealth-advisor-agent/agent/portfolio"
)

type RiskLevel string

const (
	RiskConservative   RiskLevel = "conservative"
	RiskModerate       RiskLevel = "moderate"
	RiskAggressive     RiskLevel = "aggressive"
	RiskVeryAggressive RiskLevel = "very_aggressive"
)

// DefaultRiskFreeRate approximates the treasury yield used in the Sharpe
// ratio when callers have no better number.
const DefaultRiskFreeRate = 0.04

const (
	tradingDaysPerYear = 252
	marketVolatility   = 0.15
)

// Asset-class fallbacks used when a holding carries no estimate of its own.
var (
	defaultVolatility = map[string]float64{
		"equity":      0.20,
		"bond":        0.05,
		"cash":        0.01,
		"real_estate": 0.12,
		"commodity":   0.25,
		"crypto":      0.80,
	}
	defaultReturns = map[string]float64{
		"equity":      0.10,
		"bond":        0.04,
		"cash":        0.02,
		"real_estate": 0.08,
		"commodity":   0.05,
		"crypto":      0.15,
	}
)

// RiskMetrics are simplified heuristics, not production quant numbers:
// volatility assumes uncorrelated positions and drawdown is a multiple of
// volatility.
type RiskMetrics struct {
	TotalValue  float64
	VaR95       float64
	VaR99       float64
	SharpeRatio float64
	Volatility  float64
	MaxDrawdown float64
	Beta        float64
}

func (m RiskMetrics) Dict() map[string]any {
	return map[string]any{
		"total_value":  round2(m.TotalValue),
		"var_95":       round2(m.VaR95),
		"var_99":       round2(m.VaR99),
		"sharpe_ratio": round3(m.SharpeRatio),
		"volatility":   round2(m.Volatility * 100),
		"max_drawdown": round2(m.MaxDrawdown * 100),
		"beta":         round3(m.Beta),
	}
}

func (m RiskMetrics) Summary() string {
	sharpeNote := "(Needs attention)"
	if m.SharpeRatio > 1 {
		sharpeNote = "(Good)"
	}
	return fmt.Sprintf(`**Portfolio Risk Assessment**

**Total Portfolio Value**: %s

**Risk Metrics**:
- Value at Risk (95%%): %s (daily potential loss)
- Value at Risk (99%%): %s
- Annual Volatility: %.1f%%
- Maximum Drawdown: %.1f%%

**Performance Metrics**:
- Sharpe Ratio: %.2f %s
- Beta: %.2f
`,
		money(m.TotalValue),
		money(m.VaR95),
		money(m.VaR99),
		m.Volatility*100,
		m.MaxDrawdown*100,
		m.SharpeRatio, sharpeNote,
		m.Beta,
	)
}

// CalculatePortfolioRisk computes VaR, Sharpe ratio, volatility, drawdown,
// and beta for the given holdings. Missing per-holding estimates fall back
// to asset-class defaults; an empty portfolio yields zero metrics.
func CalculatePortfolioRisk(holdings []portfoliox.Holding, riskFreeRate float64) RiskMetrics {
	if len(holdings) == 0 {
		return RiskMetrics{}
	}

	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	if total == 0 {
		return RiskMetrics{}
	}

	var portfolioReturn, varianceSum float64
	for _, h := range holdings {
		weight := h.Value / total

		vol, ok := defaultVolatility[h.AssetClass]
		if !ok {
			vol = 0.15
		}
		if h.Volatility != nil {
			vol = *h.Volatility
		}

		ret, ok := defaultReturns[h.AssetClass]
		if !ok {
			ret = 0.08
		}
		if h.AnnualReturn != nil {
			ret = *h.AnnualReturn
		}

		portfolioReturn += weight * ret
		varianceSum += (weight * vol) * (weight * vol)
	}

	// Uncorrelated-positions approximation.
	portfolioVolatility := math.Sqrt(varianceSum)
	dailyVolatility := portfolioVolatility / math.Sqrt(tradingDaysPerYear)

	sharpe := 0.0
	if portfolioVolatility > 0 {
		sharpe = (portfolioReturn - riskFreeRate) / portfolioVolatility
	}

	return RiskMetrics{
		TotalValue:  total,
		VaR95:       total * dailyVolatility * 1.645,
		VaR99:       total * dailyVolatility * 2.326,
		SharpeRatio: sharpe,
		Volatility:  portfolioVolatility,
		MaxDrawdown: math.Min(portfolioVolatility*2.5, 0.6),
		Beta:        portfolioVolatility / marketVolatility,
	}
}

// Questionnaire is the risk-tolerance input. Pointer fields distinguish
// "absent" from zero so defaults can apply.
type Questionnaire struct {
	Age                  *int    `json:"age,omitempty"`
	Income               float64 `json:"income,omitempty"`
	InvestmentExperience string  `json:"investment_experience,omitempty"`
	TimeHorizon          *int    `json:"time_horizon,omitempty"`
	LossReaction         string  `json:"loss_reaction,omitempty"`
	Goal                 string  `json:"goal,omitempty"`
}

type RiskProfile struct {
	RiskLevel        RiskLevel
	Score            int
	EquityAllocation float64
	BondAllocation   float64
	TimeHorizonYears int
	Notes            string
}

func (p RiskProfile) Dict() map[string]any {
	return map[string]any{
		"risk_level": string(p.RiskLevel),
		"score":      p.Score,
		"recommended_allocations": map[string]string{
			"equity":            fmt.Sprintf("%.0f%%", p.EquityAllocation*100),
			"bonds":             fmt.Sprintf("%.0f%%", p.BondAllocation*100),
			"cash_alternatives": fmt.Sprintf("%.0f%%", (1-p.EquityAllocation-p.BondAllocation)*100),
		},
		"time_horizon_years": p.TimeHorizonYears,
		"notes":              p.Notes,
	}
}

// AssessRiskTolerance scores questionnaire answers on a 0-100 scale and maps
// the score to a risk band with recommended allocations.
func AssessRiskTolerance(q Questionnaire) RiskProfile {
	score := 50

	age := 40
	if q.Age != nil {
		age = *q.Age
	}
	switch {
	case age < 30:
		score += 20
	case age < 40:
		score += 10
	case age > 55:
		score -= 15
	}

	years := 10
	if q.TimeHorizon != nil {
		years = *q.TimeHorizon
	}
	switch {
	case years > 20:
		score += 15
	case years > 10:
		score += 5
	case years < 5:
		score -= 20
	}

	experience := q.InvestmentExperience
	if experience == "" {
		experience = "beginner"
	}
	score += map[string]int{"none": -15, "beginner": -5, "intermediate": 5, "advanced": 15}[experience]

	reaction := q.LossReaction
	if reaction == "" {
		reaction = "hold"
	}
	score += map[string]int{"sell_all": -25, "sell_some": -10, "hold": 5, "buy_more": 20}[reaction]

	goal := q.Goal
	if goal == "" {
		goal = "growth"
	}
	score += map[string]int{"preservation": -20, "income": -10, "growth": 10, "aggressive_growth": 25}[goal]

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var (
		level  RiskLevel
		equity float64
		bonds  float64
	)
	switch {
	case score < 25:
		level, equity, bonds = RiskConservative, 0.25, 0.55
	case score < 50:
		level, equity, bonds = RiskModerate, 0.50, 0.35
	case score < 75:
		level, equity, bonds = RiskAggressive, 0.70, 0.20
	default:
		level, equity, bonds = RiskVeryAggressive, 0.85, 0.10
	}

	return RiskProfile{
		RiskLevel:        level,
		Score:            score,
		EquityAllocation: equity,
		BondAllocation:   bonds,
		TimeHorizonYears: years,
		Notes:            fmt.Sprintf("Based on your profile, you are a %s investor with a %d-year horizon.", strings.ReplaceAll(string(level), "_", " "), years),
	}
}

// CalculatePortfolioRiskTool is the registry wrapper: JSON holdings in,
// formatted summary out.
func CalculatePortfolioRiskTool(jsonText string) string {
	holdings, err := decodeHoldings(jsonText)
	if err != nil {
		return fmt.Sprintf("Error calculating risk: %v", err)
	}
	return CalculatePortfolioRisk(holdings, DefaultRiskFreeRate).Summary()
}

// AssessRiskToleranceTool is the registry wrapper for the questionnaire.
func AssessRiskToleranceTool(jsonText string) string {
	var q Questionnaire
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonText)), &q); err != nil {
		return fmt.Sprintf("Error assessing risk tolerance: %v", err)
	}
	p := AssessRiskTolerance(q)
	return fmt.Sprintf(`**Risk Profile Assessment**

Risk Level: **%s**
Risk Score: %d/100

**Recommended Asset Allocation**:
- Equities: %.0f%%
- Bonds: %.0f%%
- Cash/Alternatives: %.0f%%

%s
`,
		titleWords(string(p.RiskLevel)),
		p.Score,
		p.EquityAllocation*100,
		p.BondAllocation*100,
		(1-p.EquityAllocation-p.BondAllocation)*100,
		p.Notes,
	)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
