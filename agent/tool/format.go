package tool

import (
	"encoding/json"
	"strings"

	portfoliox "github.com/tanpawarit/wealth-advisor-agent/agent/portfolio"
)

// decodeHoldings accepts either a JSON array of holdings or a single holding
// object, mirroring the lenient inputs models tend to produce.
func decodeHoldings(jsonText string) ([]portfoliox.Holding, error) {
	raw := strings.TrimSpace(jsonText)
	if raw == "" {
		raw = "{}"
	}

	var holdings []portfoliox.Holding
	if err := json.Unmarshal([]byte(raw), &holdings); err == nil {
		return holdings, nil
	}

	var single portfoliox.Holding
	if err := json.Unmarshal([]byte(raw), &single); err != nil {
		return nil, err
	}
	return []portfoliox.Holding{single}, nil
}

func money(v float64) string { return portfoliox.FormatUSD(v) }

func titleWords(s string) string { return portfoliox.TitleWords(s) }
