package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AttributionKind describes how an attribution was created.
type AttributionKind string

const (
	AttributionManual    AttributionKind = "manual"
	AttributionAutomatic AttributionKind = "automatic"
)

// Valid reports whether k is a known attribution kind.
func (k AttributionKind) Valid() bool {
	return k == AttributionManual || k == AttributionAutomatic
}

// PaymentAttribution links a portion of a payment to the income event that
// funds it. Attributions are immutable, changing one means deleting and
// recreating it.
//
// Creation and deletion go through the attribution ledger, which holds
// the amount invariants on both parents.
type PaymentAttribution struct {
	DefaultModel
	PaymentID     uuid.UUID       `json:"paymentId" gorm:"index"`
	Payment       Payment         `json:"-"`
	IncomeEventID uuid.UUID       `json:"incomeEventId" gorm:"index"`
	IncomeEvent   IncomeEvent     `json:"-"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	Kind          AttributionKind `json:"kind" gorm:"default:manual"`
}

func (a *PaymentAttribution) BeforeSave(_ *gorm.DB) error {
	if a.Kind == "" {
		a.Kind = AttributionManual
	}

	return nil
}

func (a *PaymentAttribution) AfterSave(_ *gorm.DB) error {
	if !a.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	if !a.Kind.Valid() {
		return ErrStatusInvalid
	}

	return nil
}
