// Package tool implements the financial-analysis tools and the registry the
// orchestrator dispatches them through. Every tool is a pure function from
// one JSON-text argument to a human-readable text block; failures are
// reported as strings beginning with "Error" so a bad tool input never
// aborts a conversation turn.
package tool

import (
	"fmt"
	"sort"
	"strings"
)

// Func is a tool implementation. It must not panic; malformed input is
// reported in the returned string.
type Func func(jsonText string) string

// Descriptor registers one tool. Name must be unique within a registry and
// Description is rendered into the model prompt, so it should state the
// expected JSON shape.
type Descriptor struct {
	Name        string
	Description string
	Invoke      Func
}

// Registry is a fixed name-to-tool mapping, built once at startup.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("tool name is empty")
		}
		if d.Invoke == nil {
			return nil, fmt.Errorf("tool %s has no implementation", name)
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate tool name %s", name)
		}
		d.Name = name
		r.byName[name] = d
		r.order = append(r.order, name)
	}
	return r, nil
}

// DefaultRegistry returns the five wealth-advisory tools.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Descriptor{
			Name:        "calculate_portfolio_risk",
			Description: "Calculate risk metrics (VaR, Sharpe ratio, volatility) for a portfolio. Input is a JSON array of holdings with symbol, value, asset_class.",
			Invoke:      CalculatePortfolioRiskTool,
		},
		Descriptor{
			Name:        "assess_risk_tolerance",
			Description: "Assess the user's risk tolerance. Input is a JSON object with age, income, investment_experience, time_horizon, loss_reaction, goal.",
			Invoke:      AssessRiskToleranceTool,
		},
		Descriptor{
			Name:        "analyze_diversification",
			Description: "Analyze portfolio diversification. Input is a JSON array of holdings with symbol, value, asset_class, sector, geography.",
			Invoke:      AnalyzeDiversificationTool,
		},
		Descriptor{
			Name:        "suggest_rebalancing",
			Description: "Suggest rebalancing trades toward a balanced target allocation. Input is a JSON array of holdings.",
			Invoke:      SuggestRebalancingTool,
		},
		Descriptor{
			Name:        "design_investment_strategy",
			Description: "Design a personalized investment strategy. Input is a JSON object with risk_profile, goals, current_portfolio_value, monthly_contribution.",
			Invoke:      DesignStrategyTool,
		},
	)
	if err != nil {
		panic(err) // descriptors above are static
	}
	return r
}

func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Catalog renders the tool list for the model prompt, one tool per line, in
// registration order.
func (r *Registry) Catalog() string {
	var sb strings.Builder
	for i, name := range r.order {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s: %s", name, r.byName[name].Description)
	}
	return sb.String()
}

// Execute runs the named tool, converting a panic from a misbehaving
// implementation into an inline error string rather than crashing the turn.
func (r *Registry) Execute(name, jsonText string) (result string) {
	d, ok := r.byName[name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", name)
	}
	defer func() {
		if rec := recover(); rec != nil {
			result = fmt.Sprintf("Tool error: %v", rec)
		}
	}()
	return d.Invoke(jsonText)
}

func sortedKeysByWeight(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
