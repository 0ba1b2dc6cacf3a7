package advisor

import "strings"

// Canned tool inputs for the offline path. Deterministic by construction:
// the same question always produces the same analysis.
const (
	offlineRiskToleranceInput   = `{"age": 35, "time_horizon": 20, "loss_reaction": "hold", "goal": "growth"}`
	offlineDiversificationInput = `[{"symbol": "VTI", "value": 50000, "asset_class": "equity", "sector": "diversified", "geography": "US"}, {"symbol": "BND", "value": 20000, "asset_class": "bond", "sector": "bonds", "geography": "US"}]`
	offlineStrategyInput        = `{"risk_profile": "moderate", "goals": [{"goal_type": "retirement", "target_amount": 1000000, "years": 25}]}`
	offlineRebalancingInput     = `[{"symbol": "VTI", "value": 60000, "asset_class": "equity"}, {"symbol": "BND", "value": 20000, "asset_class": "bond"}]`
	offlinePortfolioRiskInput   = `[{"symbol": "VTI", "value": 50000, "asset_class": "equity"}, {"symbol": "BND", "value": 20000, "asset_class": "bond"}]`
)

const offlineHelp = `Hello! I'm your Wealth Management AI Assistant.

No language model is configured. Set OPENROUTER_API_KEY or GOOGLE_API_KEY to enable full AI chat.

I can still help with these commands:
- "Assess my risk tolerance"
- "Analyze my portfolio diversification"
- "Design an investment strategy"
- "Suggest rebalancing for my portfolio"
- "What's the risk level of my portfolio?"`

// offlineResponse matches keywords in the user message and runs the
// corresponding tool on sample data, so the advisor stays useful without a
// model backend.
func (a *Advisor) offlineResponse(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "risk") && (strings.Contains(lower, "assess") || strings.Contains(lower, "tolerance")):
		return a.registry.Execute("assess_risk_tolerance", offlineRiskToleranceInput)
	case strings.Contains(lower, "diversif"):
		return a.registry.Execute("analyze_diversification", offlineDiversificationInput)
	case strings.Contains(lower, "strateg"):
		return a.registry.Execute("design_investment_strategy", offlineStrategyInput)
	case strings.Contains(lower, "rebalanc"):
		return a.registry.Execute("suggest_rebalancing", offlineRebalancingInput)
	case strings.Contains(lower, "portfolio") && strings.Contains(lower, "risk"):
		return a.registry.Execute("calculate_portfolio_risk", offlinePortfolioRiskInput)
	default:
		return offlineHelp
	}
}
