// Package utils provides utility functions for the customer retention engine.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"customer-retention-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"email",
	"cancellation reason",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// email aliases
	"emailaddress":   "email",
	"email_address":  "email",
	"email address":  "email",
	"customer email": "email",
	"mail":           "email",

	// cancellation reason aliases
	"cancellation_reason": "cancellation reason",
	"cancellationreason":  "cancellation reason",
	"reason":              "cancellation reason",
	"cancel reason":       "cancellation reason",
	"cancel_reason":       "cancellation reason",

	// customer id aliases
	"customer_id": "customer id",
	"customerid":  "customer id",
	"id":          "customer id",
	"user_id":     "customer id",
	"user id":     "customer id",

	// date cancelled aliases
	"date_cancelled":    "date cancelled",
	"datecancelled":     "date cancelled",
	"cancelled":         "date cancelled",
	"cancellation date": "date cancelled",
	"cancellation_date": "date cancelled",
	"date":              "date cancelled",
}

// CSVParser handles parsing of cancellation CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseRecords parses CSV content into cancellation records. Rows that fail
// validation are collected as errors without aborting the rest; optional
// columns get per-row defaults (sequential customer ID, today's date).
func (p *CSVParser) ParseRecords(content string) ([]models.CancellationRecord, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var records []models.CancellationRecord
	var parseErrors []error
	lineNum := 1 // Header is line 1
	rowIndex := 0

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		record := p.parseRow(row, rowIndex)
		rowIndex++

		if err := models.ValidateRecord(record); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		records = append(records, record)
	}

	if len(records) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return records, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		p.columnMapping[normalized] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow converts one CSV row into a cancellation record.
func (p *CSVParser) parseRow(row []string, rowIndex int) models.CancellationRecord {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	return models.NewRecord(
		getValue("customer id"),
		getValue("email"),
		getValue("cancellation reason"),
		getValue("date cancelled"),
		rowIndex,
	)
}

// CSVValidationResult contains the results of CSV structure validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}

// ValidateCSVStructure performs a quick validation of CSV structure without
// full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		normalizedColumns[normalized] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}
