package models_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestPaymentTrimWhitespace() {
	payee := "  Electric Co \t"
	note := " Whitespace    "

	payment := suite.createTestPayment(models.Payment{
		FamilyID: uuid.New(),
		Payee:    payee,
		Note:     note,
		Amount:   decimal.NewFromFloat(120),
		DueDate:  types.NewDate(2024, 6, 15),
	})

	assert.Equal(suite.T(), strings.TrimSpace(payee), payment.Payee)
	assert.Equal(suite.T(), strings.TrimSpace(note), payment.Note)
}

func (suite *TestSuiteStandard) TestPaymentDefaults() {
	payment := suite.createTestPayment(models.Payment{
		FamilyID: uuid.New(),
		Amount:   decimal.NewFromFloat(120),
		DueDate:  types.NewDate(2024, 6, 15),
	})

	assert.Equal(suite.T(), models.PaymentOnce, payment.Kind)
	assert.Equal(suite.T(), recurrence.Once, payment.Frequency)
	assert.Equal(suite.T(), models.PaymentScheduled, payment.Status)
}

func (suite *TestSuiteStandard) TestPaymentAfterSave() {
	tests := []struct {
		name    string
		payment models.Payment
		err     error
	}{
		{
			"Valid",
			models.Payment{Amount: decimal.NewFromFloat(120), Kind: models.PaymentRecurring, Frequency: recurrence.Monthly, Status: models.PaymentScheduled},
			nil,
		},
		{
			"Negative amount",
			models.Payment{Amount: decimal.NewFromFloat(-120), Kind: models.PaymentOnce, Frequency: recurrence.Once, Status: models.PaymentScheduled},
			models.ErrAmountNotPositive,
		},
		{
			"Invalid kind",
			models.Payment{Amount: decimal.NewFromFloat(120), Kind: "sometimes", Frequency: recurrence.Once, Status: models.PaymentScheduled},
			models.ErrPaymentKindInvalid,
		},
		{
			"Invalid frequency",
			models.Payment{Amount: decimal.NewFromFloat(120), Kind: models.PaymentOnce, Frequency: "fortnightly", Status: models.PaymentScheduled},
			models.ErrFrequencyInvalid,
		},
		{
			"Invalid status",
			models.Payment{Amount: decimal.NewFromFloat(120), Kind: models.PaymentOnce, Frequency: recurrence.Once, Status: "pending"},
			models.ErrStatusInvalid,
		},
		{
			"Over-attributed",
			models.Payment{Amount: decimal.NewFromFloat(120), Kind: models.PaymentOnce, Frequency: recurrence.Once, Status: models.PaymentScheduled, AttributedAmount: decimal.NewFromFloat(121)},
			models.ErrAttributionExceedsPayment,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			err := tt.payment.AfterSave(&gorm.DB{})
			assert.ErrorIs(t, err, tt.err, "Error is: %s", err)
		})
	}
}

func (suite *TestSuiteStandard) TestPaymentRefreshStatus() {
	today := types.NewDate(2024, 6, 15)

	tests := []struct {
		name    string
		payment models.Payment
		want    models.PaymentStatus
	}{
		{
			"Due in the future",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 20), Status: models.PaymentScheduled},
			models.PaymentScheduled,
		},
		{
			"Due today",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: today, Status: models.PaymentScheduled},
			models.PaymentScheduled,
		},
		{
			"Past due, nothing attributed",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 10), Status: models.PaymentScheduled},
			models.PaymentOverdue,
		},
		{
			"Past due, partially attributed",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 10), Status: models.PaymentScheduled, AttributedAmount: decimal.NewFromFloat(50)},
			models.PaymentPartial,
		},
		{
			"Past due, fully attributed",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 10), Status: models.PaymentScheduled, AttributedAmount: decimal.NewFromFloat(120)},
			models.PaymentOverdue,
		},
		{
			"Settled payments are never touched",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 10), Status: models.PaymentPaid},
			models.PaymentPaid,
		},
		{
			"An overdue payment recovers when the due date moves",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 20), Status: models.PaymentOverdue},
			models.PaymentScheduled,
		},
		{
			"A partial settlement is never touched",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 10), Status: models.PaymentPartial, AttributedAmount: decimal.NewFromFloat(50), PaidAmount: decimal.NewNullDecimal(decimal.NewFromFloat(60))},
			models.PaymentPartial,
		},
		{
			"A partial status without a settlement is recomputed",
			models.Payment{Amount: decimal.NewFromFloat(120), DueDate: types.NewDate(2024, 6, 10), Status: models.PaymentPartial},
			models.PaymentOverdue,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			tt.payment.RefreshStatus(today)
			assert.Equal(t, tt.want, tt.payment.Status)
		})
	}
}

func (suite *TestSuiteStandard) TestPaymentMarkPaid() {
	t := suite.T()

	payment := models.Payment{
		Amount:  decimal.NewFromFloat(120),
		DueDate: types.NewDate(2024, 6, 15),
		Status:  models.PaymentScheduled,
	}

	err := payment.MarkPaid(decimal.NewFromFloat(-1), types.NewDate(2024, 6, 15))
	assert.ErrorIs(t, err, models.ErrAmountNotPositive)

	err = payment.MarkPaid(decimal.NewFromFloat(118.5), types.NewDate(2024, 6, 14))
	assert.Nil(t, err)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	assert.True(t, payment.EffectiveAmount().Equal(decimal.NewFromFloat(118.5)), "Effective amount is %s", payment.EffectiveAmount())
	assert.True(t, payment.EffectiveDate().Equal(types.NewDate(2024, 6, 14)))

	err = payment.MarkPaid(decimal.NewFromFloat(118.5), types.NewDate(2024, 6, 15))
	assert.ErrorIs(t, err, models.ErrNotPayable)
}

func (suite *TestSuiteStandard) TestPaymentMarkPaidPartiallyFunded() {
	payment := models.Payment{
		Amount:           decimal.NewFromFloat(120),
		DueDate:          types.NewDate(2024, 6, 15),
		Status:           models.PaymentScheduled,
		AttributedAmount: decimal.NewFromFloat(50),
	}

	err := payment.MarkPaid(decimal.NewFromFloat(120), types.NewDate(2024, 6, 15))
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), models.PaymentPartial, payment.Status)
}

func (suite *TestSuiteStandard) TestPaymentPartialSettlementAmount() {
	t := suite.T()

	payment := models.Payment{
		Amount:           decimal.NewFromFloat(120),
		DueDate:          types.NewDate(2024, 6, 10),
		Status:           models.PaymentScheduled,
		AttributedAmount: decimal.NewFromFloat(50),
	}

	err := payment.MarkPaid(decimal.NewFromFloat(60), types.NewDate(2024, 6, 12))
	assert.Nil(t, err)
	assert.Equal(t, models.PaymentPartial, payment.Status)
	assert.True(t, payment.Settled())

	// The settled amount takes over from the nominal amount
	assert.True(t, payment.EffectiveAmount().Equal(decimal.NewFromFloat(60)), "Effective amount is %s", payment.EffectiveAmount())
	assert.True(t, payment.RemainingAmount().Equal(decimal.NewFromFloat(10)), "Remaining amount is %s", payment.RemainingAmount())

	payment.RefreshStatus(types.NewDate(2024, 6, 15))
	assert.Equal(t, models.PaymentPartial, payment.Status)

	err = payment.MarkPaid(decimal.NewFromFloat(60), types.NewDate(2024, 6, 15))
	assert.ErrorIs(t, err, models.ErrNotPayable)
}

func (suite *TestSuiteStandard) TestPaymentCancel() {
	t := suite.T()

	payment := models.Payment{
		Amount: decimal.NewFromFloat(120),
		Status: models.PaymentScheduled,
	}

	err := payment.Cancel()
	assert.Nil(t, err)
	assert.Equal(t, models.PaymentCancelled, payment.Status)

	err = payment.Cancel()
	assert.ErrorIs(t, err, models.ErrStatusInvalid)

	attributed := models.Payment{
		Amount:           decimal.NewFromFloat(120),
		Status:           models.PaymentScheduled,
		AttributedAmount: decimal.NewFromFloat(50),
	}

	err = attributed.Cancel()
	assert.ErrorIs(t, err, models.ErrPaymentHasAttributions)
}

func (suite *TestSuiteStandard) TestPaymentRemainingAmount() {
	payment := models.Payment{
		Amount:           decimal.NewFromFloat(120),
		AttributedAmount: decimal.NewFromFloat(45),
	}

	assert.True(suite.T(), payment.RemainingAmount().Equal(decimal.NewFromFloat(75)), "Remaining amount is %s", payment.RemainingAmount())
}

func (suite *TestSuiteStandard) TestPaymentDeleteWithAttributions() {
	t := suite.T()
	familyID := uuid.New()

	incomeEvent := suite.createTestIncomeEvent(models.IncomeEvent{
		FamilyID: familyID,
		Amount:   decimal.NewFromFloat(3000),
		Date:     types.NewDate(2024, 6, 1),
	})

	payment := suite.createTestPayment(models.Payment{
		FamilyID: familyID,
		Amount:   decimal.NewFromFloat(500),
		DueDate:  types.NewDate(2024, 6, 5),
	})

	attribution := models.PaymentAttribution{
		PaymentID:     payment.ID,
		IncomeEventID: incomeEvent.ID,
		Amount:        decimal.NewFromFloat(500),
	}
	err := suite.db.Create(&attribution).Error
	assert.Nil(t, err)

	err = suite.db.Delete(&payment).Error
	assert.ErrorIs(t, err, models.ErrPaymentHasAttributions)

	err = suite.db.Delete(&attribution).Error
	assert.Nil(t, err)

	err = suite.db.Delete(&payment).Error
	assert.Nil(t, err)
}
