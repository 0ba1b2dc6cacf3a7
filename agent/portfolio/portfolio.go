// Package portfolio holds the investment data model shared by the tools,
// the memory store, and the HTTP API.
package portfolio

import (
	"fmt"
	"strings"
	"time"
)

// Holding is a single position. Value is the current market value in the
// account currency; AnnualReturn and Volatility are optional annualized
// estimates, defaulted by asset class when absent.
type Holding struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name,omitempty"`
	Value        float64  `json:"value"`
	AssetClass   string   `json:"asset_class"`
	Sector       string   `json:"sector,omitempty"`
	Geography    string   `json:"geography,omitempty"`
	Shares       *float64 `json:"shares,omitempty"`
	CostBasis    *float64 `json:"cost_basis,omitempty"`
	PurchaseDate string   `json:"purchase_date,omitempty"`
	AnnualReturn *float64 `json:"annual_return,omitempty"`
	Volatility   *float64 `json:"volatility,omitempty"`
}

type Portfolio struct {
	UserID    string    `json:"user_id"`
	Holdings  []Holding `json:"holdings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Portfolio) TotalValue() float64 {
	var total float64
	for _, h := range p.Holdings {
		total += h.Value
	}
	return total
}

// AssetAllocation returns the fraction of total value per asset class.
// Empty when the portfolio has no value.
func (p Portfolio) AssetAllocation() map[string]float64 {
	total := p.TotalValue()
	if total == 0 {
		return map[string]float64{}
	}
	alloc := make(map[string]float64, 4)
	for _, h := range p.Holdings {
		alloc[h.AssetClass] += h.Value / total
	}
	return alloc
}

// FormatUSD renders a dollar amount with thousands separators and two
// decimals, e.g. 1234567.89 -> "$1,234,567.89".
func FormatUSD(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var sb strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(intPart[i : i+3])
	}

	out := "$" + sb.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// TitleWords capitalizes each underscore- or space-separated word, e.g.
// "very_aggressive" -> "Very Aggressive".
func TitleWords(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
