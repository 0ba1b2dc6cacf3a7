package prompt

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/risk_assessment.txt
	riskAssessmentRaw string

	//go:embed template/diversification.txt
	diversificationRaw string

	//go:embed template/strategy.txt
	strategyRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	System          string
	RiskAssessment  string
	Diversification string
	Strategy        string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:          strings.TrimSpace(systemRaw),
		RiskAssessment:  strings.TrimSpace(riskAssessmentRaw),
		Diversification: strings.TrimSpace(diversificationRaw),
		Strategy:        strings.TrimSpace(strategyRaw),
	}
}

// RiskAssessment fills the risk-assessment template with serialized
// portfolio data.
func (p PromptSet) RiskAssessmentPrompt(portfolioData string) string {
	return fmt.Sprintf(p.RiskAssessment, portfolioData)
}

// DiversificationPrompt fills the diversification template.
func (p PromptSet) DiversificationPrompt(portfolioData string) string {
	return fmt.Sprintf(p.Diversification, portfolioData)
}

// StrategyPrompt fills the strategy template.
func (p PromptSet) StrategyPrompt(riskProfile, goals, currentValue, monthlyContribution, timeHorizon string) string {
	return fmt.Sprintf(p.Strategy, riskProfile, goals, currentValue, monthlyContribution, timeHorizon)
}
