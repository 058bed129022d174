// Package models defines the data structures for the customer retention engine.
package models

import (
	"fmt"
	"time"
)

// CancellationRecord is one customer cancellation to process.
// Immutable once constructed; created per form submission or CSV row.
type CancellationRecord struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	Reason        string `json:"cancellation_reason"`
	DateCancelled string `json:"date_cancelled"`
}

// DateFormat is the canonical date layout for DateCancelled values.
const DateFormat = "2006-01-02"

// DefaultCustomerID generates a customer ID for rows that lack one.
// Row indices are zero-based; generated IDs start at CUST-001.
func DefaultCustomerID(rowIndex int) string {
	return fmt.Sprintf("CUST-%03d", rowIndex+1)
}

// NewRecord builds a CancellationRecord, filling defaults for the optional
// fields the way batch inputs do: a sequential customer ID and today's date.
func NewRecord(customerID, email, reason, dateCancelled string, rowIndex int) CancellationRecord {
	if customerID == "" {
		customerID = DefaultCustomerID(rowIndex)
	}
	if dateCancelled == "" {
		dateCancelled = time.Now().Format(DateFormat)
	}
	return CancellationRecord{
		CustomerID:    customerID,
		CustomerEmail: email,
		Reason:        reason,
		DateCancelled: dateCancelled,
	}
}
