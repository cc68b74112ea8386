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

func (suite *TestSuiteStandard) TestIncomeEventTrimWhitespace() {
	name := "  Main paycheck \t"
	note := " Whitespace    "

	incomeEvent := suite.createTestIncomeEvent(models.IncomeEvent{
		FamilyID: uuid.New(),
		Name:     name,
		Note:     note,
		Amount:   decimal.NewFromFloat(3000),
		Date:     types.NewDate(2024, 6, 1),
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), incomeEvent.Name)
	assert.Equal(suite.T(), strings.TrimSpace(note), incomeEvent.Note)
}

func (suite *TestSuiteStandard) TestIncomeEventDefaults() {
	incomeEvent := suite.createTestIncomeEvent(models.IncomeEvent{
		FamilyID: uuid.New(),
		Amount:   decimal.NewFromFloat(3000),
		Date:     types.NewDate(2024, 6, 1),
	})

	assert.Equal(suite.T(), recurrence.Once, incomeEvent.Frequency)
	assert.Equal(suite.T(), models.IncomeEventScheduled, incomeEvent.Status)
}

func (suite *TestSuiteStandard) TestIncomeEventAfterSave() {
	tests := []struct {
		name        string
		incomeEvent models.IncomeEvent
		err         error
	}{
		{
			"Valid",
			models.IncomeEvent{Amount: decimal.NewFromFloat(3000), Frequency: recurrence.Monthly, Status: models.IncomeEventScheduled},
			nil,
		},
		{
			"Negative amount",
			models.IncomeEvent{Amount: decimal.NewFromFloat(-10), Frequency: recurrence.Monthly, Status: models.IncomeEventScheduled},
			models.ErrAmountNotPositive,
		},
		{
			"Invalid frequency",
			models.IncomeEvent{Amount: decimal.NewFromFloat(3000), Frequency: "fortnightly", Status: models.IncomeEventScheduled},
			models.ErrFrequencyInvalid,
		},
		{
			"Invalid status",
			models.IncomeEvent{Amount: decimal.NewFromFloat(3000), Frequency: recurrence.Monthly, Status: "pending"},
			models.ErrStatusInvalid,
		},
		{
			"Over-allocated",
			models.IncomeEvent{Amount: decimal.NewFromFloat(3000), Frequency: recurrence.Monthly, Status: models.IncomeEventScheduled, AllocatedAmount: decimal.NewFromFloat(3001)},
			models.ErrAttributionExceedsIncome,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			err := tt.incomeEvent.AfterSave(&gorm.DB{})
			assert.ErrorIs(t, err, tt.err, "Error is: %s", err)
		})
	}
}

func (suite *TestSuiteStandard) TestIncomeEventMarkReceived() {
	t := suite.T()

	incomeEvent := suite.createTestIncomeEvent(models.IncomeEvent{
		FamilyID: uuid.New(),
		Amount:   decimal.NewFromFloat(3000),
		Date:     types.NewDate(2024, 6, 1),
	})

	err := incomeEvent.MarkReceived(decimal.NewFromFloat(-1), types.NewDate(2024, 6, 2))
	assert.ErrorIs(t, err, models.ErrAmountNotPositive)

	err = incomeEvent.MarkReceived(decimal.NewFromFloat(3100), types.NewDate(2024, 6, 2))
	assert.Nil(t, err)
	assert.Equal(t, models.IncomeEventReceived, incomeEvent.Status)
	assert.True(t, incomeEvent.EffectiveAmount().Equal(decimal.NewFromFloat(3100)), "Effective amount is %s", incomeEvent.EffectiveAmount())
	assert.True(t, incomeEvent.EffectiveDate().Equal(types.NewDate(2024, 6, 2)))

	err = incomeEvent.MarkReceived(decimal.NewFromFloat(3100), types.NewDate(2024, 6, 3))
	assert.ErrorIs(t, err, models.ErrNotReceivable)
}

func (suite *TestSuiteStandard) TestIncomeEventCancel() {
	t := suite.T()

	incomeEvent := models.IncomeEvent{
		Amount: decimal.NewFromFloat(3000),
		Status: models.IncomeEventScheduled,
	}

	err := incomeEvent.Cancel()
	assert.Nil(t, err)
	assert.Equal(t, models.IncomeEventCancelled, incomeEvent.Status)

	err = incomeEvent.Cancel()
	assert.ErrorIs(t, err, models.ErrStatusInvalid)

	allocated := models.IncomeEvent{
		Amount:          decimal.NewFromFloat(3000),
		Status:          models.IncomeEventScheduled,
		AllocatedAmount: decimal.NewFromFloat(100),
	}

	err = allocated.Cancel()
	assert.ErrorIs(t, err, models.ErrIncomeEventHasAttributions)
}

func (suite *TestSuiteStandard) TestIncomeEventRemainingAmount() {
	incomeEvent := models.IncomeEvent{
		Amount:          decimal.NewFromFloat(3000),
		AllocatedAmount: decimal.NewFromFloat(1250),
	}

	assert.True(suite.T(), incomeEvent.RemainingAmount().Equal(decimal.NewFromFloat(1750)), "Remaining amount is %s", incomeEvent.RemainingAmount())
}

func (suite *TestSuiteStandard) TestIncomeEventEffectiveFallsBackToNominal() {
	t := suite.T()

	incomeEvent := models.IncomeEvent{
		Amount: decimal.NewFromFloat(3000),
		Date:   types.NewDate(2024, 6, 1),
		Status: models.IncomeEventScheduled,
	}

	assert.True(t, incomeEvent.EffectiveAmount().Equal(decimal.NewFromFloat(3000)))
	assert.True(t, incomeEvent.EffectiveDate().Equal(types.NewDate(2024, 6, 1)))
}

func (suite *TestSuiteStandard) TestIncomeEventCreateNegativeAmount() {
	err := suite.db.Create(&models.IncomeEvent{
		FamilyID: uuid.New(),
		Name:     "Bad paycheck",
		Amount:   decimal.NewFromFloat(-3000),
		Date:     types.NewDate(2024, 6, 1),
	}).Error

	assert.ErrorIs(suite.T(), err, models.ErrAmountNotPositive)

	var count int64
	suite.db.Model(&models.IncomeEvent{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count, "The rejected income event must not be persisted")
}

func (suite *TestSuiteStandard) TestIncomeEventDeleteWithAttributions() {
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

	err = suite.db.Delete(&incomeEvent).Error
	assert.ErrorIs(t, err, models.ErrIncomeEventHasAttributions)

	err = suite.db.Delete(&attribution).Error
	assert.Nil(t, err)

	err = suite.db.Delete(&incomeEvent).Error
	assert.Nil(t, err)
}
