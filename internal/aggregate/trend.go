package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// Granularity is the bucket size of a trend series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity accepts the granularity names in any case.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (valid: daily, weekly, monthly)", s)
	}
}

// Bucket is one point of a trend series. Key is the ISO date for daily
// buckets, the week's Sunday for weekly buckets and YYYY-MM for monthly ones.
type Bucket struct {
	Key             string          `json:"key"`
	Label           string          `json:"label"`
	Start           string          `json:"start"`
	End             string          `json:"end"`
	Amount          decimal.Decimal `json:"amount"`
	AmountSecondary decimal.Decimal `json:"amountSecondary"`
	Count           int             `json:"count"`
}

// TrendSeries buckets active expenses in r. Daily and weekly series contain
// every bucket of the range, empty ones at zero; weeks run Monday to Sunday,
// starting with the week holding r.Start. Monthly series contain the months
// in which any active transaction of the range falls. A zero range spans the
// transactions' own dates. Both amounts are rounded to 2 decimal places.
func TrendSeries(txs []models.Transaction, g Granularity, r models.DateRange, n currency.Normalizer) ([]Bucket, error) {
	active, _ := PartitionActive(FilterByDateRange(txs, r))

	if r.Start == "" || r.End == "" {
		dr, ok := DataRange(active)
		if !ok {
			return []Bucket{}, nil
		}
		if r.Start == "" {
			r.Start = dr.Start
		}
		if r.End == "" {
			r.End = dr.End
		}
	}
	start, err := dateutils.ParseISO(r.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid range start: %w", err)
	}
	end, err := dateutils.ParseISO(r.End)
	if err != nil {
		return nil, fmt.Errorf("invalid range end: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("range end %s is before start %s", r.End, r.Start)
	}

	var (
		buckets []Bucket
		keyOf   func(time.Time) string
	)
	switch g {
	case Daily:
		buckets = dailyBuckets(start, end)
		keyOf = dateutils.ToISODate
	case Weekly:
		buckets = weeklyBuckets(start, end)
		keyOf = func(t time.Time) string { return dateutils.ToISODate(dateutils.EndOfWeek(t)) }
	case Monthly:
		buckets = monthlyBuckets(active)
		keyOf = dateutils.MonthKey
	default:
		return nil, fmt.Errorf("unknown granularity %q", g)
	}

	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	for _, t := range active {
		if !t.IsExpense() {
			continue
		}
		day, err := dateutils.ParseISO(t.Date)
		if err != nil {
			continue
		}
		i, ok := index[keyOf(day)]
		if !ok {
			continue
		}
		buckets[i].Amount = buckets[i].Amount.Add(t.Amount)
		buckets[i].AmountSecondary = buckets[i].AmountSecondary.Add(secondaryAmount(t, n))
		buckets[i].Count++
	}

	for i := range buckets {
		buckets[i].Amount = currency.Round2(buckets[i].Amount)
		buckets[i].AmountSecondary = currency.Round2(buckets[i].AmountSecondary)
	}
	return buckets, nil
}

// secondaryAmount prefers the recorded original amount and converts
// otherwise.
func secondaryAmount(t models.Transaction, n currency.Normalizer) decimal.Decimal {
	if t.AmountOriginal != nil && strings.EqualFold(t.OriginalCurrency, n.Secondary) {
		return *t.AmountOriginal
	}
	return n.ToSecondary(t.Amount)
}

func newBucket(key, label string, start, end time.Time) Bucket {
	return Bucket{
		Key:             key,
		Label:           label,
		Start:           dateutils.ToISODate(start),
		End:             dateutils.ToISODate(end),
		Amount:          decimal.Zero,
		AmountSecondary: decimal.Zero,
	}
}

func dailyBuckets(start, end time.Time) []Bucket {
	var out []Bucket
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, newBucket(dateutils.ToISODate(d), d.Format("Jan 2"), d, d))
	}
	return out
}

func weeklyBuckets(start, end time.Time) []Bucket {
	var out []Bucket
	for monday := dateutils.StartOfWeek(start); !monday.After(end); monday = monday.AddDate(0, 0, 7) {
		sunday := monday.AddDate(0, 0, 6)
		out = append(out, newBucket(dateutils.ToISODate(sunday), "w/e "+sunday.Format("Jan 2"), monday, sunday))
	}
	return out
}

func monthlyBuckets(active []models.Transaction) []Bucket {
	seen := make(map[string]time.Time)
	for _, t := range active {
		day, err := dateutils.ParseISO(t.Date)
		if err != nil {
			continue
		}
		seen[dateutils.MonthKey(day)] = dateutils.StartOfMonth(day)
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		first := seen[k]
		out = append(out, newBucket(k, first.Format("Jan 2006"), first, dateutils.EndOfMonth(first)))
	}
	return out
}
