package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentKind describes how a payment repeats.
type PaymentKind string

const (
	PaymentOnce      PaymentKind = "once"
	PaymentRecurring PaymentKind = "recurring"
	PaymentVariable  PaymentKind = "variable"
)

// Valid reports whether k is a known payment kind.
func (k PaymentKind) Valid() bool {
	switch k {
	case PaymentOnce, PaymentRecurring, PaymentVariable:
		return true
	}

	return false
}

// PaymentStatus is the lifecycle status of a payment.
type PaymentStatus string

const (
	PaymentScheduled PaymentStatus = "scheduled"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentScheduled, PaymentPaid, PaymentOverdue, PaymentPartial, PaymentCancelled:
		return true
	}

	return false
}


// Payment represents an expected or settled outflow, e.g. a bill.
type Payment struct {
	DefaultModel
	FamilyID  uuid.UUID            `json:"familyId" gorm:"index"`
	Payee     string               `json:"payee"`
	Note      string               `json:"note"`
	Amount    decimal.Decimal      `json:"amount" gorm:"type:DECIMAL(20,8)"` // The nominal amount
	DueDate   types.Date           `json:"dueDate"`                          // Also the recurrence anchor
	Kind      PaymentKind          `json:"kind" gorm:"default:once"`
	Frequency recurrence.Frequency `json:"frequency" gorm:"default:once"`
	Status    PaymentStatus        `json:"status" gorm:"default:scheduled"`

	// Set when the payment is settled
	PaidAmount decimal.NullDecimal `json:"paidAmount" gorm:"type:DECIMAL(20,8)"`
	PaidDate   *types.Date         `json:"paidDate"`

	CategoryID *uuid.UUID      `json:"categoryId"` // The spending category, optional
	Category   *BudgetCategory `json:"-"`

	// AttributedAmount is derived from the active attributions for this
	// payment. It is written exclusively by the attribution ledger.
	AttributedAmount decimal.Decimal `json:"attributedAmount" gorm:"type:DECIMAL(20,8)"`
}

// Settled reports whether a settlement has been recorded. A partial
// settlement counts. The partial status alone does not: it is also derived
// for past-due payments that are only partially funded.
func (p Payment) Settled() bool {
	return p.Status == PaymentPaid || p.Status == PaymentCancelled || p.PaidAmount.Valid
}

// EffectiveAmount returns the settled amount once one is recorded, even
// for a partial settlement, else the nominal amount.
func (p Payment) EffectiveAmount() decimal.Decimal {
	if p.PaidAmount.Valid {
		return p.PaidAmount.Decimal
	}

	return p.Amount
}

// EffectiveDate returns the settlement date once one is recorded, else the
// due date.
func (p Payment) EffectiveDate() types.Date {
	if p.PaidDate != nil {
		return *p.PaidDate
	}

	return p.DueDate
}

// RemainingAmount returns the part of the effective amount that is not yet
// covered by attributions.
func (p Payment) RemainingAmount() decimal.Decimal {
	return p.EffectiveAmount().Sub(p.AttributedAmount)
}

// RefreshStatus recomputes the status for an unsettled payment against the
// given day. Settled payments are never touched, so a partial settlement
// stays visible as partial.
func (p *Payment) RefreshStatus(today types.Date) {
	if p.Settled() {
		return
	}

	if p.DueDate.Before(today) {
		if p.AttributedAmount.IsPositive() && p.AttributedAmount.LessThan(p.EffectiveAmount()) {
			p.Status = PaymentPartial
		} else {
			p.Status = PaymentOverdue
		}
		return
	}

	p.Status = PaymentScheduled
}

// MarkPaid settles the payment with the given amount and date. A payment
// that is only partially funded at settlement time keeps that visible
// through the partial status.
func (p *Payment) MarkPaid(amount decimal.Decimal, date types.Date) error {
	if p.Settled() {
		return ErrNotPayable
	}

	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}

	p.PaidAmount = decimal.NewNullDecimal(amount)
	p.PaidDate = &date

	if p.AttributedAmount.IsPositive() && p.AttributedAmount.LessThan(amount) {
		p.Status = PaymentPartial
	} else {
		p.Status = PaymentPaid
	}

	return nil
}

// Cancel transitions an unsettled payment to cancelled. A payment with
// active attributions can not be cancelled.
func (p *Payment) Cancel() error {
	if p.Settled() {
		return ErrStatusInvalid
	}

	if p.AttributedAmount.IsPositive() {
		return ErrPaymentHasAttributions
	}

	p.Status = PaymentCancelled
	return nil
}

func (p *Payment) BeforeSave(_ *gorm.DB) error {
	p.Payee = strings.TrimSpace(p.Payee)
	p.Note = strings.TrimSpace(p.Note)

	if p.Kind == "" {
		p.Kind = PaymentOnce
	}

	if p.Frequency == "" {
		p.Frequency = recurrence.Once
	}

	if p.Status == "" {
		p.Status = PaymentScheduled
	}

	return nil
}

func (p *Payment) AfterSave(_ *gorm.DB) error {
	if !p.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	if !p.Kind.Valid() {
		return ErrPaymentKindInvalid
	}

	if !p.Frequency.Valid() {
		return ErrFrequencyInvalid
	}

	if !p.Status.Valid() {
		return ErrStatusInvalid
	}

	if p.AttributedAmount.GreaterThan(p.EffectiveAmount()) {
		return ErrAttributionExceedsPayment
	}

	return nil
}

// BeforeDelete rejects the deletion while active attributions reference
// this payment.
func (p *Payment) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&PaymentAttribution{}).Where("payment_id = ?", p.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrPaymentHasAttributions
	}

	return nil
}
