// Package importer turns bank CSV exports into canonical transaction drafts
// and hands them to the repository.
package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/apperror"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/dateutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

const expectedFormat = "a header row with per-currency 'Money In/Money Out' columns or a single 'Amount' column"

// MappingLookup finds merchant mappings by description.
type MappingLookup interface {
	Lookup(description string) (models.MerchantMapping, bool)
}

// CategoryLookup resolves category ids against the registry.
type CategoryLookup interface {
	Get(id string) (models.Category, bool)
}

// Options describe one import.
type Options struct {
	// DefaultBank is the account selected by the user. Its name is used when
	// a row has no bank column value; its currency drives single-amount rows.
	DefaultBank models.Bank
	// Banks lists the known accounts, matched against per-row bank values.
	Banks    []models.Bank
	FileName string
}

// Result is the outcome of parsing one file.
type Result struct {
	Drafts          []models.Transaction `json:"drafts"`
	Parsed          int                  `json:"parsed"`
	AutoCategorized int                  `json:"autoCategorized"`
	Skipped         int                  `json:"skipped"`
	DateFallbacks   int                  `json:"dateFallbacks"`
	Layout          Layout               `json:"layout"`
}

// Parser converts CSV exports to transaction drafts.
type Parser struct {
	normalizer currency.Normalizer
	mappings   MappingLookup
	categories CategoryLookup
	logger     logging.Logger
	now        func() time.Time
}

// NewParser creates a parser. mappings and categories may be nil, which
// disables auto-categorization and the registry check respectively.
func NewParser(normalizer currency.Normalizer, mappings MappingLookup, categories CategoryLookup, logger logging.Logger) *Parser {
	return &Parser{
		normalizer: normalizer,
		mappings:   mappings,
		categories: categories,
		logger:     logging.OrDefault(logger).WithField(logging.FieldComponent, "importer"),
		now:        time.Now,
	}
}

// SetClock replaces the clock used for the date fallback.
func (p *Parser) SetClock(now func() time.Time) {
	if now != nil {
		p.now = now
	}
}

// Parse reads data and returns the drafts it yields. A file with neither a
// date column nor a usable amount column fails with
// *apperror.InvalidFormatError and yields nothing; problems in individual
// rows, including rows without an amount, never fail the import.
func (p *Parser) Parse(data []byte, opts Options) (*Result, error) {
	log := p.logger.WithField(logging.FieldFile, opts.FileName)

	decoded, err := decode(data)
	if err != nil {
		return nil, &apperror.InvalidFormatError{FileName: opts.FileName, Msg: err.Error()}
	}

	headers, rows, malformed, err := readTable(decoded)
	if err != nil {
		return nil, &apperror.InvalidFormatError{
			FileName: opts.FileName,
			Msg:      fmt.Sprintf("unreadable CSV: %v", err),
		}
	}

	layout := DetectLayout(headers)
	if layout.Date == "" && !layout.Viable() {
		return nil, &apperror.InvalidFormatError{
			FileName:       opts.FileName,
			ExpectedFormat: expectedFormat,
			Headers:        headers,
			Msg:            "no date or amount columns found",
		}
	}

	log.WithFields(
		logging.F("multi_currency", layout.MultiCurrency()),
		logging.F(logging.FieldCount, len(rows)),
	).Debug("Detected CSV layout")

	res := &Result{Drafts: make([]models.Transaction, 0, len(rows)), Layout: layout, Skipped: malformed}
	if malformed > 0 {
		log.WithField("rows", malformed).Warn("Skipping unreadable CSV rows")
	}
	today := dateutils.ToISODate(p.now())

	for i, row := range rows {
		var (
			draft models.Transaction
			ok    bool
		)
		if layout.MultiCurrency() {
			draft, ok = p.multiCurrencyAmounts(row, layout)
		} else {
			draft, ok = p.singleAmount(row, layout, opts)
		}
		if !ok {
			res.Skipped++
			log.WithField("row", i+2).Debug("Skipping row without amount")
			continue
		}

		draft.Description = strings.TrimSpace(field(row, layout.Description))
		draft.Date, ok = normalizeDate(field(row, layout.Date))
		if !ok {
			draft.Date = today
			res.DateFallbacks++
		}
		draft.BankName = resolveBankName(row, layout, opts)

		if p.autoCategorize(&draft) {
			res.AutoCategorized++
		}
		res.Drafts = append(res.Drafts, draft)
	}

	res.Parsed = len(res.Drafts)
	log.WithFields(
		logging.F(logging.FieldCount, res.Parsed),
		logging.F("auto_categorized", res.AutoCategorized),
		logging.F("skipped", res.Skipped),
		logging.F("date_fallbacks", res.DateFallbacks),
	).Info("Parsed CSV import")
	return res, nil
}

// multiCurrencyAmounts reads the four money columns. A row is income when
// either money-in value is positive; the chosen side is then taken as a
// magnitude. A missing side is derived through the normalizer, and a row
// with no amount in either currency is rejected.
func (p *Parser) multiCurrencyAmounts(row map[string]string, l Layout) (models.Transaction, bool) {
	inGBP := parseColumn(row, l.MoneyInGBP)
	outGBP := parseColumn(row, l.MoneyOutGBP)
	inAED := parseColumn(row, l.MoneyInAED)
	outAED := parseColumn(row, l.MoneyOutAED)

	t := models.Transaction{Type: models.TypeExpense}
	gbp, aed := outGBP, outAED
	if inGBP.IsPositive() || inAED.IsPositive() {
		t.Type = models.TypeIncome
		gbp, aed = inGBP, inAED
	}
	gbp, aed = gbp.Abs(), aed.Abs()

	if gbp.IsZero() && aed.IsZero() {
		return models.Transaction{}, false
	}
	if gbp.IsZero() {
		gbp = currency.Round2(p.normalizer.ToPrimary(aed))
	}
	if aed.IsZero() {
		aed = currency.Round2(p.normalizer.ToSecondary(gbp))
	}

	t.Amount = gbp
	t.AmountOriginal = &aed
	t.OriginalCurrency = p.normalizer.Secondary
	return t, true
}

// singleAmount reads a signed amount column. The sign gives the direction;
// the bank's currency says which side the value is in.
func (p *Parser) singleAmount(row map[string]string, l Layout, opts Options) (models.Transaction, bool) {
	value := currency.ParseLooseAmount(field(row, l.Amount))
	if value.IsZero() {
		return models.Transaction{}, false
	}

	t := models.Transaction{Type: models.TypeExpense}
	if !value.IsNegative() {
		t.Type = models.TypeIncome
	}
	magnitude := value.Abs()

	bank := opts.DefaultBank
	if b, ok := models.FindBank(opts.Banks, field(row, l.Bank)); ok {
		bank = b
	}

	var gbp, aed decimal.Decimal
	if strings.EqualFold(bank.Currency, p.normalizer.Secondary) {
		aed = magnitude
		gbp = currency.Round2(p.normalizer.ToPrimary(magnitude))
	} else {
		gbp = magnitude
		aed = currency.Round2(p.normalizer.ToSecondary(magnitude))
	}

	t.Amount = gbp
	t.AmountOriginal = &aed
	t.OriginalCurrency = p.normalizer.Secondary
	return t, true
}

// autoCategorize applies a ready merchant mapping. Mappings pointing at a
// category the registry no longer holds are ignored.
func (p *Parser) autoCategorize(t *models.Transaction) bool {
	if p.mappings == nil || t.Description == "" {
		return false
	}
	m, ok := p.mappings.Lookup(t.Description)
	if !ok || !m.IsReady() {
		return false
	}

	name := m.CategoryName
	if p.categories != nil {
		c, found := p.categories.Get(m.CategoryID)
		if !found {
			return false
		}
		name = c.Name
	}

	t.CategoryID = m.CategoryID
	t.CategoryName = name
	t.SubcategoryName = m.SubcategoryName
	t.Excluded = m.CategoryID == models.ExcludedCategoryID
	return true
}

// field returns the value of column, or "" when the column was not detected.
func field(row map[string]string, column string) string {
	if column == "" {
		return ""
	}
	return row[column]
}

func parseColumn(row map[string]string, column string) decimal.Decimal {
	return currency.ParseLooseAmount(field(row, column))
}

func normalizeDate(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	iso, err := dateutils.NormalizeISO(raw)
	if err != nil {
		return "", false
	}
	return iso, true
}

func resolveBankName(row map[string]string, l Layout, opts Options) string {
	if v := strings.TrimSpace(field(row, l.Bank)); v != "" {
		return v
	}
	return opts.DefaultBank.Name
}
