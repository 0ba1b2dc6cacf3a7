package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

type GoalType string

const (
	GoalRetirement       GoalType = "retirement"
	GoalEducation        GoalType = "education"
	GoalHomePurchase     GoalType = "home_purchase"
	GoalWealthBuilding   GoalType = "wealth_building"
	GoalIncomeGeneration GoalType = "income_generation"
	GoalEmergencyFund    GoalType = "emergency_fund"
)

var validGoalTypes = map[GoalType]bool{
	GoalRetirement:       true,
	GoalEducation:        true,
	GoalHomePurchase:     true,
	GoalWealthBuilding:   true,
	GoalIncomeGeneration: true,
	GoalEmergencyFund:    true,
}

type Goal struct {
	GoalType            GoalType `json:"goal_type"`
	TargetAmount        float64  `json:"target_amount"`
	YearsToGoal         int      `json:"years_to_goal"`
	CurrentSavings      float64  `json:"current_savings"`
	MonthlyContribution float64  `json:"monthly_contribution"`
}

type InvestmentSuggestion struct {
	Name       string  `json:"name"`
	Ticker     string  `json:"ticker"`
	Type       string  `json:"type"`
	Allocation float64 `json:"allocation"`
	Amount     float64 `json:"amount"`
}

type InvestmentPlan struct {
	StrategyName          string
	RiskProfile           string
	Goals                 []Goal
	RecommendedAllocation map[string]float64
	MonthlySavingsNeeded  float64
	ProjectedValue        float64
	ActionItems           []string
	PortfolioSuggestions  []InvestmentSuggestion
}

func (p InvestmentPlan) Dict() map[string]any {
	return map[string]any{
		"strategy_name":          p.StrategyName,
		"risk_profile":           p.RiskProfile,
		"recommended_allocation": p.RecommendedAllocation,
		"monthly_savings_needed": round2(p.MonthlySavingsNeeded),
		"projected_value":        round2(p.ProjectedValue),
		"action_items":           p.ActionItems,
		"portfolio_suggestions":  p.PortfolioSuggestions,
	}
}

func (p InvestmentPlan) Summary() string {
	var allocation strings.Builder
	for _, class := range sortedKeysByWeight(p.RecommendedAllocation) {
		fmt.Fprintf(&allocation, "  - %s: %.0f%%\n", titleWords(class), p.RecommendedAllocation[class]*100)
	}

	var suggestions strings.Builder
	for i, s := range p.PortfolioSuggestions {
		if i == 5 {
			break
		}
		fmt.Fprintf(&suggestions, "  - **%s** (%s) - %.0f%% allocation\n", s.Name, s.Ticker, s.Allocation*100)
	}

	var actions strings.Builder
	for i, a := range p.ActionItems {
		if i == 5 {
			break
		}
		fmt.Fprintf(&actions, "  %d. %s\n", i+1, a)
	}

	return fmt.Sprintf(`**Investment Strategy: %s**

**Profile**: %s

**Recommended Asset Allocation**:
%s
**Financial Projections**:
- Monthly Savings Needed: %s
- Projected Portfolio Value: %s

**Suggested Investments**:
%s
**Action Items**:
%s`,
		p.StrategyName,
		p.RiskProfile,
		allocation.String(),
		money(p.MonthlySavingsNeeded),
		money(p.ProjectedValue),
		suggestions.String(),
		actions.String(),
	)
}

type strategyTemplate struct {
	name           string
	allocation     map[string]float64
	expectedReturn float64
}

var strategyTemplates = map[string]strategyTemplate{
	"conservative": {
		name: "Capital Preservation",
		allocation: map[string]float64{
			"equity":      0.25,
			"bond":        0.50,
			"cash":        0.15,
			"real_estate": 0.10,
		},
		expectedReturn: 0.05,
	},
	"moderate": {
		name: "Balanced Growth",
		allocation: map[string]float64{
			"equity":      0.50,
			"bond":        0.30,
			"real_estate": 0.10,
			"cash":        0.05,
			"commodity":   0.05,
		},
		expectedReturn: 0.07,
	},
	"aggressive": {
		name: "Growth Focus",
		allocation: map[string]float64{
			"equity":      0.70,
			"bond":        0.15,
			"real_estate": 0.10,
			"commodity":   0.05,
		},
		expectedReturn: 0.09,
	},
	"very_aggressive": {
		name: "Maximum Growth",
		allocation: map[string]float64{
			"equity":      0.85,
			"bond":        0.05,
			"real_estate": 0.05,
			"crypto":      0.05,
		},
		expectedReturn: 0.11,
	},
}

// Top pick per asset class, used to turn an allocation into concrete tickers.
var investmentSuggestions = map[string][]InvestmentSuggestion{
	"equity": {
		{Name: "Total Stock Market ETF", Ticker: "VTI", Type: "US Equity"},
		{Name: "S&P 500 ETF", Ticker: "VOO", Type: "US Large Cap"},
		{Name: "International ETF", Ticker: "VXUS", Type: "International"},
		{Name: "Emerging Markets ETF", Ticker: "VWO", Type: "Emerging"},
	},
	"bond": {
		{Name: "Total Bond Market ETF", Ticker: "BND", Type: "US Bonds"},
		{Name: "Treasury Bond ETF", Ticker: "TLT", Type: "Long Treasury"},
		{Name: "Corporate Bond ETF", Ticker: "LQD", Type: "Corporate"},
	},
	"real_estate": {
		{Name: "Real Estate ETF", Ticker: "VNQ", Type: "REIT"},
		{Name: "International REIT", Ticker: "VNQI", Type: "Global REIT"},
	},
	"commodity": {
		{Name: "Gold ETF", Ticker: "GLD", Type: "Gold"},
		{Name: "Commodity ETF", Ticker: "DJP", Type: "Diversified"},
	},
	"cash": {
		{Name: "Money Market Fund", Ticker: "VMFXX", Type: "Cash"},
		{Name: "Short-Term Treasury", Ticker: "SHV", Type: "T-Bills"},
	},
	"crypto": {
		{Name: "Bitcoin ETF", Ticker: "IBIT", Type: "Bitcoin"},
		{Name: "Ethereum ETF", Ticker: "ETHA", Type: "Ethereum"},
	},
}

// StrategyRequest is the JSON input of the design_investment_strategy tool.
type StrategyRequest struct {
	RiskProfile           string      `json:"risk_profile"`
	Goals                 []GoalInput `json:"goals"`
	CurrentPortfolioValue float64     `json:"current_portfolio_value"`
	MonthlyContribution   float64     `json:"monthly_contribution"`
}

type GoalInput struct {
	GoalType            string   `json:"goal_type"`
	TargetAmount        *float64 `json:"target_amount"`
	Years               *int     `json:"years"`
	CurrentSavings      float64  `json:"current_savings"`
	MonthlyContribution float64  `json:"monthly_contribution"`
}

// DesignStrategy builds a personalized plan: template allocation per risk
// band, a short-horizon tilt, a PMT solve for the monthly savings needed,
// and a month-by-month compound projection.
func DesignStrategy(riskProfile string, goals []GoalInput, currentPortfolioValue, monthlyContribution float64) (InvestmentPlan, error) {
	profile := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(riskProfile)), " ", "_")
	template, ok := strategyTemplates[profile]
	if !ok {
		profile = "moderate"
		template = strategyTemplates[profile]
	}

	var (
		parsedGoals []Goal
		totalTarget float64
		minYears    = 30
	)
	for _, g := range goals {
		goalType := GoalType(g.GoalType)
		if g.GoalType == "" {
			goalType = GoalWealthBuilding
		}
		if !validGoalTypes[goalType] {
			return InvestmentPlan{}, fmt.Errorf("%q is not a valid goal type", g.GoalType)
		}

		target := 100000.0
		if g.TargetAmount != nil {
			target = *g.TargetAmount
		}
		years := 10
		if g.Years != nil {
			years = *g.Years
		}

		parsedGoals = append(parsedGoals, Goal{
			GoalType:            goalType,
			TargetAmount:        target,
			YearsToGoal:         years,
			CurrentSavings:      g.CurrentSavings,
			MonthlyContribution: g.MonthlyContribution,
		})
		totalTarget += target
		if years < minYears {
			minYears = years
		}
	}

	if len(parsedGoals) == 0 {
		parsedGoals = []Goal{{
			GoalType:     GoalWealthBuilding,
			TargetAmount: 500000,
			YearsToGoal:  20,
		}}
		totalTarget = 500000
		minYears = 20
	}

	allocation := make(map[string]float64, len(template.allocation))
	for class, pct := range template.allocation {
		allocation[class] = pct
	}
	if minYears < 5 {
		// Short horizon: shift toward bonds and cash.
		allocation["equity"] = math.Max(0.20, allocation["equity"]-0.20)
		allocation["bond"] += 0.15
		allocation["cash"] += 0.05
	}

	months := minYears * 12
	monthlyRate := template.expectedReturn / 12

	var monthlyNeeded float64
	if months > 0 && template.expectedReturn > 0 {
		var futureCurrent float64
		if currentPortfolioValue > 0 {
			futureCurrent = currentPortfolioValue * math.Pow(1+monthlyRate, float64(months))
		}
		remaining := math.Max(0, totalTarget-futureCurrent)
		if monthlyRate > 0 {
			monthlyNeeded = remaining * monthlyRate / (math.Pow(1+monthlyRate, float64(months)) - 1)
		} else {
			monthlyNeeded = remaining / float64(months)
		}
	} else {
		monthlyNeeded = totalTarget / 240
	}

	contribution := math.Max(monthlyContribution, monthlyNeeded)
	projected := currentPortfolioValue
	for i := 0; i < months; i++ {
		projected = projected*(1+monthlyRate) + contribution
	}

	var suggestions []InvestmentSuggestion
	for _, class := range sortedKeysByWeight(allocation) {
		pct := allocation[class]
		picks, ok := investmentSuggestions[class]
		if pct <= 0 || !ok {
			continue
		}
		top := picks[0]
		top.Allocation = pct
		top.Amount = projected * pct
		suggestions = append(suggestions, top)
	}

	var actionItems []string
	if currentPortfolioValue == 0 {
		actionItems = append(actionItems, "Open a brokerage account (Fidelity, Vanguard, or Schwab recommended)")
	}
	actionItems = append(actionItems, fmt.Sprintf("Set up automatic monthly investment of %s", money(contribution)))
	if allocation["equity"] > 0.5 {
		actionItems = append(actionItems, "Consider tax-advantaged accounts (401k, IRA) for equity holdings")
	}
	actionItems = append(actionItems,
		"Review and rebalance portfolio quarterly",
		"Increase contributions by 1-2% annually if possible",
	)
	goalTypes := map[GoalType]bool{}
	for _, g := range parsedGoals {
		goalTypes[g.GoalType] = true
	}
	if goalTypes[GoalRetirement] {
		actionItems = append(actionItems, "Maximize employer 401k match if available")
	}
	if goalTypes[GoalEmergencyFund] {
		actionItems = append(actionItems, "Keep 3-6 months expenses in high-yield savings")
	}

	return InvestmentPlan{
		StrategyName:          template.name,
		RiskProfile:           titleWords(profile),
		Goals:                 parsedGoals,
		RecommendedAllocation: allocation,
		MonthlySavingsNeeded:  monthlyNeeded,
		ProjectedValue:        projected,
		ActionItems:           actionItems,
		PortfolioSuggestions:  suggestions,
	}, nil
}

// DesignStrategyTool is the registry wrapper: JSON request in, formatted
// plan out.
func DesignStrategyTool(jsonText string) string {
	raw := strings.TrimSpace(jsonText)
	if raw == "" {
		raw = "{}"
	}

	var req StrategyRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return fmt.Sprintf("Error designing strategy: %v", err)
	}

	plan, err := DesignStrategy(req.RiskProfile, req.Goals, req.CurrentPortfolioValue, req.MonthlyContribution)
	if err != nil {
		return fmt.Sprintf("Error designing strategy: %v", err)
	}
	return plan.Summary()
}
