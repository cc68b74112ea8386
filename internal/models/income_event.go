package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IncomeEventStatus is the lifecycle status of an income event.
type IncomeEventStatus string

const (
	IncomeEventScheduled IncomeEventStatus = "scheduled"
	IncomeEventReceived  IncomeEventStatus = "received"
	IncomeEventCancelled IncomeEventStatus = "cancelled"
)

// Valid reports whether s is a known income event status.
func (s IncomeEventStatus) Valid() bool {
	switch s {
	case IncomeEventScheduled, IncomeEventReceived, IncomeEventCancelled:
		return true
	}

	return false
}

// IncomeEvent represents an expected or received inflow, e.g. a paycheck.
//
// One record exists per recurrence anchor, not one per future occurrence.
type IncomeEvent struct {
	DefaultModel
	FamilyID  uuid.UUID            `json:"familyId" gorm:"index"`
	Name      string               `json:"name"`
	Note      string               `json:"note"`
	Amount    decimal.Decimal      `json:"amount" gorm:"type:DECIMAL(20,8)"` // The nominal amount
	Date      types.Date           `json:"date"`                             // The scheduled date, also the recurrence anchor
	Frequency recurrence.Frequency `json:"frequency" gorm:"default:once"`
	Status    IncomeEventStatus    `json:"status" gorm:"default:scheduled"`

	// Set when the event is marked as received
	ActualAmount decimal.NullDecimal `json:"actualAmount" gorm:"type:DECIMAL(20,8)"`
	ActualDate   *types.Date         `json:"actualDate"`

	// AllocatedAmount is derived from the active attributions against this
	// event. It is written exclusively by the attribution ledger.
	AllocatedAmount decimal.Decimal `json:"allocatedAmount" gorm:"type:DECIMAL(20,8)"`
}

// EffectiveAmount returns the actual amount if the event has been received,
// else the nominal amount.
func (i IncomeEvent) EffectiveAmount() decimal.Decimal {
	if i.Status == IncomeEventReceived && i.ActualAmount.Valid {
		return i.ActualAmount.Decimal
	}

	return i.Amount
}

// EffectiveDate returns the actual date if the event has been received,
// else the scheduled date.
func (i IncomeEvent) EffectiveDate() types.Date {
	if i.Status == IncomeEventReceived && i.ActualDate != nil {
		return *i.ActualDate
	}

	return i.Date
}

// RemainingAmount returns the part of the effective amount that is not yet
// allocated to payments.
func (i IncomeEvent) RemainingAmount() decimal.Decimal {
	return i.EffectiveAmount().Sub(i.AllocatedAmount)
}

// MarkReceived transitions a scheduled event to received and records the
// settled amount and date.
func (i *IncomeEvent) MarkReceived(amount decimal.Decimal, date types.Date) error {
	if i.Status != IncomeEventScheduled {
		return ErrNotReceivable
	}

	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}

	i.Status = IncomeEventReceived
	i.ActualAmount = decimal.NewNullDecimal(amount)
	i.ActualDate = &date

	return nil
}

// Cancel transitions a scheduled event to cancelled. An event with active
// attributions can not be cancelled, the attributions have to be deleted
// first.
func (i *IncomeEvent) Cancel() error {
	if i.Status != IncomeEventScheduled {
		return ErrStatusInvalid
	}

	if i.AllocatedAmount.IsPositive() {
		return ErrIncomeEventHasAttributions
	}

	i.Status = IncomeEventCancelled
	return nil
}

func (i *IncomeEvent) BeforeSave(_ *gorm.DB) error {
	i.Name = strings.TrimSpace(i.Name)
	i.Note = strings.TrimSpace(i.Note)

	if i.Frequency == "" {
		i.Frequency = recurrence.Once
	}

	if i.Status == "" {
		i.Status = IncomeEventScheduled
	}

	return nil
}

func (i *IncomeEvent) AfterSave(_ *gorm.DB) error {
	if !i.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	if !i.Frequency.Valid() {
		return ErrFrequencyInvalid
	}

	if !i.Status.Valid() {
		return ErrStatusInvalid
	}

	if i.AllocatedAmount.GreaterThan(i.EffectiveAmount()) {
		return ErrAttributionExceedsIncome
	}

	return nil
}

// BeforeDelete rejects the deletion while active attributions reference
// this income event.
func (i *IncomeEvent) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&PaymentAttribution{}).Where("income_event_id = ?", i.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return ErrIncomeEventHasAttributions
	}

	return nil
}
