/*
Package stats computes read-side rollups over the sales ledger.

PURPOSE:
  Everything the statistics dashboard and the fiado (credit) dashboard
  show is derived here: revenue splits, per-product and per-customer
  rollups, payment-method breakdowns, and debt groupings.

DESIGN:
  All aggregation is stateless, synchronous and pure: functions take the
  full sale sequence (already loaded by the ledger) plus filter
  parameters and return computed summaries. Nothing is cached or
  incrementally maintained; every read recomputes from scratch. Given a
  well-formed sale sequence these functions cannot fail.

FILTERS:
  Exactly one period filter is active at a time:
    today - same local calendar date as now (not a 24h window)
    week  - date >= now - 7*24h
    month - date >= now - 30*24h
    all   - no filter
  The customer filter is either "all", a specific customer name, or the
  "none" sentinel meaning "paid sales" - every settled sale regardless of
  any stored name. See DESIGN.md for the reasoning behind that sentinel.

SEE ALSO:
  - debt.go: CustomerDebt grouping and the DebtBook service
*/
package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tiendita/pos-engine/ledger"
)

// =============================================================================
// FILTERS
// =============================================================================

type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return true
	}
	return false
}

// Customer filter sentinels. Any other value matches sales with that exact
// customer name.
const (
	CustomerAll  = "all"
	CustomerNone = "none" // settled sales, i.e. not on credit
)

// FilterSales applies one period filter and one customer filter to the full
// sale sequence. Relative periods are measured against now.
func FilterSales(sales []ledger.Sale, now time.Time, period Period, customer string) []ledger.Sale {
	var out []ledger.Sale
	for _, s := range sales {
		if !inPeriod(s.Date, now, period) {
			continue
		}
		switch customer {
		case CustomerAll:
		case CustomerNone:
			if s.IsPending {
				continue
			}
		default:
			if s.CustomerName != customer {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func inPeriod(date, now time.Time, period Period) bool {
	switch period {
	case PeriodToday:
		y1, m1, d1 := date.In(now.Location()).Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case PeriodWeek:
		return !date.Before(now.Add(-7 * 24 * time.Hour))
	case PeriodMonth:
		return !date.Before(now.Add(-30 * 24 * time.Hour))
	default:
		return true
	}
}

// =============================================================================
// REVENUE SUMMARY
// =============================================================================

// Summary is the revenue split over a filtered set. Total == Paid + Pending
// exactly, for any input.
type Summary struct {
	Count   int
	Total   ledger.Cents
	Paid    ledger.Cents
	Pending ledger.Cents
}

func Summarize(sales []ledger.Sale) Summary {
	var sum Summary
	sum.Count = len(sales)
	for _, s := range sales {
		sum.Total += s.Total
		if s.IsPending {
			sum.Pending += s.Total
		} else {
			sum.Paid += s.Total
		}
	}
	return sum
}

// =============================================================================
// PER-PRODUCT ROLLUP
// =============================================================================

// ProductStat aggregates sold quantity and revenue for one product display
// name. Grouping is by name, not id: two catalog entries sharing a display
// name merge into one row.
type ProductStat struct {
	Name     string
	Quantity int
	Total    ledger.Cents
}

// ProductRollup folds over the items of every sale in the filtered set.
// Rows are sorted descending by revenue; ties keep first-encountered order.
func ProductRollup(sales []ledger.Sale) []ProductStat {
	index := make(map[string]int)
	var rows []ProductStat

	for _, s := range sales {
		for _, it := range s.Items {
			i, ok := index[it.Name]
			if !ok {
				i = len(rows)
				index[it.Name] = i
				rows = append(rows, ProductStat{Name: it.Name})
			}
			rows[i].Quantity += it.Quantity
			rows[i].Total += it.Subtotal()
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}

// =============================================================================
// PER-PAYMENT-METHOD ROLLUP
// =============================================================================

// PaymentStat is the share of one payment method over the filtered set.
type PaymentStat struct {
	Method     ledger.PaymentMethod
	Count      int
	Percentage decimal.Decimal
}

// PaymentBreakdown counts sales per method. Every known method appears,
// including zero-count ones. Percentage is 0 (never NaN/Inf) for an empty
// filtered set.
func PaymentBreakdown(sales []ledger.Sale) []PaymentStat {
	counts := make(map[ledger.PaymentMethod]int)
	for _, s := range sales {
		counts[s.PaymentMethod]++
	}

	total := len(sales)
	out := make([]PaymentStat, 0, len(ledger.PaymentMethods()))
	for _, m := range ledger.PaymentMethods() {
		stat := PaymentStat{Method: m, Count: counts[m], Percentage: decimal.Zero}
		if total > 0 {
			stat.Percentage = decimal.NewFromInt(int64(counts[m] * 100)).
				Div(decimal.NewFromInt(int64(total)))
		}
		out = append(out, stat)
	}
	return out
}

// =============================================================================
// PER-CUSTOMER ROLLUP
// =============================================================================

// CustomerStat aggregates the pending (credit) sales of one customer.
type CustomerStat struct {
	Name      string
	Purchases int
	Total     ledger.Cents
}

// CustomerRollup groups the pending sales of the filtered set by customer
// name (empty string allowed), sorted descending by owed total.
func CustomerRollup(sales []ledger.Sale) []CustomerStat {
	index := make(map[string]int)
	var rows []CustomerStat

	for _, s := range sales {
		if !s.IsPending {
			continue
		}
		i, ok := index[s.CustomerName]
		if !ok {
			i = len(rows)
			index[s.CustomerName] = i
			rows = append(rows, CustomerStat{Name: s.CustomerName})
		}
		rows[i].Purchases++
		rows[i].Total += s.Total
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}

// =============================================================================
// RECENT SALES VIEW
// =============================================================================

// DefaultRecentLimit is how many sales the dashboard's recent list shows.
const DefaultRecentLimit = 8

// Recent returns the true most recent n sales by insertion order, newest
// first. Reverse-then-take, so the newest sales are always included no
// matter how long the ledger is.
func Recent(sales []ledger.Sale, n int) []ledger.Sale {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	if n > len(sales) {
		n = len(sales)
	}

	out := make([]ledger.Sale, 0, n)
	for i := len(sales) - 1; i >= len(sales)-n; i-- {
		out = append(out, sales[i])
	}
	return out
}
