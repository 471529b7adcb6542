package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// Summary holds income and expense totals over active transactions.
type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
	IncomeCount  int             `json:"incomeCount"`
	ExpenseCount int             `json:"expenseCount"`
}

// ComputeSummary totals income and expenses. Excluded transactions are
// never counted, even when passed in.
func ComputeSummary(active []models.Transaction) Summary {
	s := Summary{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, t := range active {
		if t.IsExcluded() {
			continue
		}
		switch t.Type {
		case models.TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			s.IncomeCount++
		case models.TypeExpense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			s.ExpenseCount++
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// CompletedMonthsCount is the number of whole calendar months from the
// range start up to the earlier of the range end and the end of the month
// before now. The current month is never complete. The result is at least 1.
func CompletedMonthsCount(r models.DateRange, now time.Time) int {
	start, err := dateutils.ParseISO(r.Start)
	if err != nil {
		return 1
	}
	limit := dateutils.EndOfPreviousMonth(now)
	end, err := dateutils.ParseISO(r.End)
	if err != nil || end.After(limit) {
		end = limit
	}

	n := dateutils.MonthsBetween(start, end)
	if n < 1 {
		return 1
	}
	return n
}

// Overview is the headline view of a date range.
type Overview struct {
	Range                 models.DateRange `json:"range"`
	Summary               Summary          `json:"summary"`
	ExcludedTotal         decimal.Decimal  `json:"excludedTotal"`
	ExcludedCount         int              `json:"excludedCount"`
	CompletedMonths       int              `json:"completedMonths"`
	AverageMonthlyIncome  decimal.Decimal  `json:"averageMonthlyIncome"`
	AverageMonthlyExpense decimal.Decimal  `json:"averageMonthlyExpense"`
	SavingsRate           decimal.Decimal  `json:"savingsRate"`
	UncategorizedCount    int              `json:"uncategorizedCount"`
	MissingCategoryCount  int              `json:"missingCategoryCount"`
}

// BuildOverview filters txs to r and computes the summary, the excluded
// total and per-month averages. An all-time (zero) range is measured from the
// earliest transaction. known reports whether a category id is registered;
// nil disables the missing-category count.
func BuildOverview(txs []models.Transaction, r models.DateRange, now time.Time, known func(id string) bool) Overview {
	inRange := FilterByDateRange(txs, r)
	active, excluded := PartitionActive(inRange)

	o := Overview{
		Range:         r,
		Summary:       ComputeSummary(active),
		ExcludedTotal: decimal.Zero,
		ExcludedCount: len(excluded),
		SavingsRate:   decimal.Zero,
	}
	for _, t := range excluded {
		o.ExcludedTotal = o.ExcludedTotal.Add(t.SignedAmount())
	}
	for _, t := range active {
		if !t.IsCategorized() {
			o.UncategorizedCount++
		} else if known != nil && !known(t.CategoryID) {
			o.MissingCategoryCount++
		}
	}

	measured := r
	if measured.Start == "" {
		if dr, ok := DataRange(inRange); ok {
			measured.Start = dr.Start
		}
	}
	o.CompletedMonths = CompletedMonthsCount(measured, now)

	months := decimal.NewFromInt(int64(o.CompletedMonths))
	o.AverageMonthlyIncome = currency.Round2(o.Summary.TotalIncome.Div(months))
	o.AverageMonthlyExpense = currency.Round2(o.Summary.TotalExpense.Div(months))
	if o.Summary.TotalIncome.IsPositive() {
		o.SavingsRate = currency.Round2(o.Summary.Balance.Div(o.Summary.TotalIncome).Mul(decimal.NewFromInt(100)))
	}
	return o
}
