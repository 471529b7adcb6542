// Package common provides the CSV export shared by the CLI and the HTTP API.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/fileutils"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
)

// Delimiter is the default field separator for exports.
const Delimiter rune = ','

// ExportRow is one exported transaction. The money headers match the
// importer's multi-currency columns so an export can be imported again.
type ExportRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Type        string `csv:"Type"`
	MoneyInGBP  string `csv:"Money In - GBP"`
	MoneyOutGBP string `csv:"Money Out - GBP"`
	MoneyInAED  string `csv:"Money In - AED"`
	MoneyOutAED string `csv:"Money Out - AED"`
	Category    string `csv:"Category"`
	Subcategory string `csv:"Subcategory"`
	Bank        string `csv:"Bank"`
	Excluded    bool   `csv:"Excluded"`
	Notes       string `csv:"Notes"`
}

// NewExportRow converts t, deriving the secondary amount through n when the
// transaction has no recorded original amount.
func NewExportRow(t models.Transaction, n currency.Normalizer) ExportRow {
	secondary := n.ToSecondary(t.Amount)
	if t.AmountOriginal != nil {
		secondary = *t.AmountOriginal
	}
	primaryStr := t.Amount.StringFixed(2)
	secondaryStr := currency.Round2(secondary).StringFixed(2)

	row := ExportRow{
		Date:        t.Date,
		Description: t.Description,
		Type:        string(t.Type),
		Category:    t.CategoryName,
		Subcategory: t.SubcategoryName,
		Bank:        t.BankName,
		Excluded:    t.IsExcluded(),
		Notes:       t.Notes,
	}
	if t.IsIncome() {
		row.MoneyInGBP, row.MoneyInAED = primaryStr, secondaryStr
	} else {
		row.MoneyOutGBP, row.MoneyOutAED = primaryStr, secondaryStr
	}
	return row
}

// WriteTransactionsCSV writes transactions to w with a header row.
func WriteTransactionsCSV(w io.Writer, transactions []models.Transaction, n currency.Normalizer, delimiter rune) error {
	rows := make([]ExportRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, NewExportRow(t, n))
	}

	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToCSV writes transactions to a CSV file, creating its
// directory if needed.
func WriteTransactionsToCSV(transactions []models.Transaction, csvFile string, n currency.Normalizer, logger logging.Logger) error {
	logger = logging.OrDefault(logger)
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	if err := fileutils.EnsureParentDir(csvFile); err != nil {
		return err
	}

	file, err := os.Create(csvFile) // #nosec G304 -- output path chosen by the user
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteTransactionsCSV(file, transactions, n, Delimiter); err != nil {
		logger.WithError(err).Error("Failed to marshal transactions to CSV")
		return err
	}

	logger.Info("Successfully wrote transactions to CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(transactions)))
	return nil
}
