package importer

import (
	"regexp"
	"strings"
)

// Layout records which header was chosen for each column concern. Empty
// means the concern was not found.
type Layout struct {
	Headers     []string `json:"headers"`
	Date        string   `json:"date,omitempty"`
	Description string   `json:"description,omitempty"`
	MoneyInGBP  string   `json:"moneyInGbp,omitempty"`
	MoneyOutGBP string   `json:"moneyOutGbp,omitempty"`
	MoneyInAED  string   `json:"moneyInAed,omitempty"`
	MoneyOutAED string   `json:"moneyOutAed,omitempty"`
	Bank        string   `json:"bank,omitempty"`
	Amount      string   `json:"amount,omitempty"`
}

// MultiCurrency reports whether any per-currency money column was found.
// Such columns take precedence over a single amount column.
func (l Layout) MultiCurrency() bool {
	return l.MoneyInGBP != "" || l.MoneyOutGBP != "" || l.MoneyInAED != "" || l.MoneyOutAED != ""
}

// Viable reports whether rows can yield an amount at all.
func (l Layout) Viable() bool {
	return l.MultiCurrency() || l.Amount != ""
}

// columnRule finds one concern: exact header names are tried first, in order,
// then the pattern is matched case-insensitively.
type columnRule struct {
	exact   []string
	pattern *regexp.Regexp
}

func (r columnRule) find(headers []string, taken map[string]bool) string {
	for _, name := range r.exact {
		for _, h := range headers {
			if h == name && !taken[h] {
				return h
			}
		}
	}
	for _, h := range headers {
		if !taken[h] && r.pattern.MatchString(strings.TrimSpace(h)) {
			return h
		}
	}
	return ""
}

var (
	moneyInGBPRule = columnRule{
		exact:   []string{"Money In - GBP", "Money In GBP", "Paid In - GBP", "Paid In (GBP)"},
		pattern: regexp.MustCompile(`(?i)(money\s*in|paid\s*in|credit).*(gbp|£)`),
	}
	moneyOutGBPRule = columnRule{
		exact:   []string{"Money Out - GBP", "Money Out GBP", "Paid Out - GBP", "Paid Out (GBP)"},
		pattern: regexp.MustCompile(`(?i)(money\s*out|paid\s*out|debit).*(gbp|£)`),
	}
	moneyInAEDRule = columnRule{
		exact:   []string{"Money In - AED", "Money In AED", "Paid In - AED", "Paid In (AED)"},
		pattern: regexp.MustCompile(`(?i)(money\s*in|paid\s*in|credit).*aed`),
	}
	moneyOutAEDRule = columnRule{
		exact:   []string{"Money Out - AED", "Money Out AED", "Paid Out - AED", "Paid Out (AED)"},
		pattern: regexp.MustCompile(`(?i)(money\s*out|paid\s*out|debit).*aed`),
	}
	dateRule = columnRule{
		exact:   []string{"Transaction Date", "Date", "Posting Date", "Value Date"},
		pattern: regexp.MustCompile(`(?i)date`),
	}
	descriptionRule = columnRule{
		exact:   []string{"Description", "Merchant", "Narrative", "Details", "Payee"},
		pattern: regexp.MustCompile(`(?i)desc|merchant|narrat|detail|payee|memo|reference`),
	}
	bankRule = columnRule{
		exact:   []string{"Bank", "Account", "Bank Name", "Account Name"},
		pattern: regexp.MustCompile(`(?i)^(bank|account)(\s*name)?$`),
	}
	amountRule = columnRule{
		exact:   []string{"Amount", "Value", "Transaction Amount"},
		pattern: regexp.MustCompile(`(?i)^amount\b|\bamount$|^value$`),
	}
)

// DetectLayout assigns headers to column concerns. Money columns are claimed
// first so that broader patterns cannot steal them; each header serves at
// most one concern.
func DetectLayout(headers []string) Layout {
	l := Layout{Headers: headers}
	taken := make(map[string]bool)
	claim := func(r columnRule) string {
		h := r.find(headers, taken)
		if h != "" {
			taken[h] = true
		}
		return h
	}

	l.MoneyInGBP = claim(moneyInGBPRule)
	l.MoneyOutGBP = claim(moneyOutGBPRule)
	l.MoneyInAED = claim(moneyInAEDRule)
	l.MoneyOutAED = claim(moneyOutAEDRule)
	l.Date = claim(dateRule)
	l.Description = claim(descriptionRule)
	l.Bank = claim(bankRule)
	l.Amount = claim(amountRule)
	return l
}
