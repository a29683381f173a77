/*
summary.go - Windowed loss aggregation

PURPOSE:
  Rolls a window of loss reports up into the numbers a manager looks at
  first: how much value walked out, how many incidents, how many are still
  unexplained, and which products bleed the most.

DETERMINISM:
  Top products are ranked by summed loss value descending, ties broken by
  incident count descending, then product id ascending. The same reports
  always produce the same ranking.

SEE ALSO:
  - bar/service.go: loads the report window and calls Summarize
*/
package recon

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopLossProductLimit caps the ranked product list in a summary.
const TopLossProductLimit = 5

// Summarize aggregates loss reports already filtered to the window.
// TotalLossValue sums only positive loss values; surpluses (negative
// values) appear in incident counts but never reduce the total.
func Summarize(reports []LossReport, windowDays int) LossSummary {
	s := LossSummary{
		WindowDays:      windowDays,
		TotalIncidents:  len(reports),
		TotalLossValue:  decimal.Zero,
		TopLossProducts: []ProductLoss{},
	}

	byProduct := make(map[string]*ProductLoss)

	for _, r := range reports {
		if r.LossValue.IsPositive() {
			s.TotalLossValue = s.TotalLossValue.Add(r.LossValue)
		}

		switch r.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityWarning:
			s.WarningCount++
		case SeverityInfo:
			s.InfoCount++
		}

		if !r.Resolved() {
			s.UnresolvedCount++
		}

		pl, ok := byProduct[string(r.ProductID)]
		if !ok {
			pl = &ProductLoss{ProductID: r.ProductID, TotalLoss: decimal.Zero}
			byProduct[string(r.ProductID)] = pl
		}
		pl.TotalLoss = pl.TotalLoss.Add(r.LossValue)
		pl.Incidents++
	}

	ranked := make([]ProductLoss, 0, len(byProduct))
	for _, pl := range byProduct {
		ranked = append(ranked, *pl)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].TotalLoss.Equal(ranked[j].TotalLoss) {
			return ranked[i].TotalLoss.GreaterThan(ranked[j].TotalLoss)
		}
		if ranked[i].Incidents != ranked[j].Incidents {
			return ranked[i].Incidents > ranked[j].Incidents
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > TopLossProductLimit {
		ranked = ranked[:TopLossProductLimit]
	}
	s.TopLossProducts = ranked
	return s
}
