package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReceipt_ValidateAssignment(t *testing.T) {
	assert.NoError(t, (&Receipt{}).ValidateAssignment())
	assert.NoError(t, (&Receipt{TripID: "t1", AssignmentType: AssignmentFuel}).ValidateAssignment())
	assert.ErrorIs(t, (&Receipt{TripID: "t1"}).ValidateAssignment(), ErrInconsistentAssignment)
	assert.ErrorIs(t, (&Receipt{AssignmentType: AssignmentOther}).ValidateAssignment(), ErrInconsistentAssignment)
}

func TestReceipt_PriceEUR(t *testing.T) {
	assert.Equal(t, 70.0, *(&Receipt{AmountEUR: Float(70), OriginalAmount: Float(1900), OriginalCurrency: "CZK"}).PriceEUR())
	assert.Equal(t, 55.5, *(&Receipt{OriginalAmount: Float(55.5), OriginalCurrency: "EUR"}).PriceEUR())
	assert.Nil(t, (&Receipt{OriginalAmount: Float(1900), OriginalCurrency: "CZK"}).PriceEUR())
}

func TestReceipt_Classification(t *testing.T) {
	assert.Equal(t, ReceiptFuel, (&Receipt{Liters: Float(40)}).Classification())
	assert.Equal(t, ReceiptOther, (&Receipt{}).Classification())
	assert.Equal(t, ReceiptOther, (&Receipt{Kind: ReceiptOther, Liters: Float(1)}).Classification())
}

func TestReceipt_InYear(t *testing.T) {
	date := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	source := 2025
	assert.True(t, (&Receipt{ReceiptDate: &date}).InYear(2024))
	assert.True(t, (&Receipt{ReceiptDate: &date, SourceYear: &source}).InYear(2025))
	assert.False(t, (&Receipt{}).InYear(2024))
}
