// Package ledger owns the attribution records linking payments to the
// income events that fund them.
//
// The ledger is the single writer of the derived totals on both parents:
// every create or delete recomputes Payment.AttributedAmount and
// IncomeEvent.AllocatedAmount in the same transaction as the edge itself.
// Writers against the same payment or income event are serialized through
// a keyed lock table, so the amount invariants are never checked against
// stale totals.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultLockTimeout is how long a write waits for its entity locks before
// failing with models.ErrLockTimeout.
const DefaultLockTimeout = 5 * time.Second

// Ledger creates and deletes payment attributions.
type Ledger struct {
	db    *gorm.DB
	locks *lockTable

	// LockTimeout bounds the wait for the per-entity locks.
	LockTimeout time.Duration

	// Today returns the current calendar date. It is a field so that
	// tests can pin it.
	Today func() types.Date
}

// New returns a Ledger using the given database.
func New(db *gorm.DB) *Ledger {
	return &Ledger{
		db:          db,
		locks:       newLockTable(),
		LockTimeout: DefaultLockTimeout,
		Today: func() types.Date {
			return types.DateOf(time.Now())
		},
	}
}

// Create links the amount of a payment to an income event.
//
// Both parents have to exist, belong to the family and must not be
// cancelled. The attributed sums on both sides must not exceed the
// respective effective amounts; a violation is rejected before anything is
// written.
func (l *Ledger) Create(familyID, paymentID, incomeEventID uuid.UUID, amount decimal.Decimal, kind models.AttributionKind) (models.PaymentAttribution, error) {
	if !amount.IsPositive() {
		return models.PaymentAttribution{}, models.ErrAmountNotPositive
	}

	if kind == "" {
		kind = models.AttributionManual
	}

	if !kind.Valid() {
		return models.PaymentAttribution{}, models.ErrStatusInvalid
	}

	release, err := l.locks.acquire(l.LockTimeout, paymentID, incomeEventID)
	if err != nil {
		return models.PaymentAttribution{}, models.ErrLockTimeout
	}
	defer release()

	var attribution models.PaymentAttribution
	err = l.db.Transaction(func(tx *gorm.DB) error {
		payment, err := l.payment(tx, familyID, paymentID)
		if err != nil {
			return err
		}

		incomeEvent, err := l.incomeEvent(tx, familyID, incomeEventID)
		if err != nil {
			return err
		}

		if payment.Status == models.PaymentCancelled {
			return models.ErrPaymentCancelled
		}

		if incomeEvent.Status == models.IncomeEventCancelled {
			return models.ErrIncomeEventCancelled
		}

		if payment.AttributedAmount.Add(amount).GreaterThan(payment.EffectiveAmount()) {
			return models.ErrAttributionExceedsPayment
		}

		if incomeEvent.AllocatedAmount.Add(amount).GreaterThan(incomeEvent.EffectiveAmount()) {
			return models.ErrAttributionExceedsIncome
		}

		attribution = models.PaymentAttribution{
			PaymentID:     payment.ID,
			IncomeEventID: incomeEvent.ID,
			Amount:        amount,
			Kind:          kind,
		}
		if err := tx.Create(&attribution).Error; err != nil {
			return err
		}

		payment.AttributedAmount = payment.AttributedAmount.Add(amount)
		payment.RefreshStatus(l.Today())
		incomeEvent.AllocatedAmount = incomeEvent.AllocatedAmount.Add(amount)

		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Save(&incomeEvent).Error
	})
	if err != nil {
		return models.PaymentAttribution{}, err
	}

	return attribution, nil
}

// Delete removes an attribution and reverses its amount on both parents
// atomically.
func (l *Ledger) Delete(familyID, attributionID uuid.UUID) error {
	// The parent IDs are needed for locking, so the attribution is read
	// once up front and again under the locks.
	var preRead models.PaymentAttribution
	err := l.db.Joins("Payment").
		First(&preRead, "payment_attributions.id = ? AND Payment.family_id = ?", attributionID, familyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrAttributionNotFound
		}
		return err
	}

	release, err := l.locks.acquire(l.LockTimeout, preRead.PaymentID, preRead.IncomeEventID)
	if err != nil {
		return models.ErrLockTimeout
	}
	defer release()

	return l.db.Transaction(func(tx *gorm.DB) error {
		var attribution models.PaymentAttribution
		err := tx.Joins("Payment").
			First(&attribution, "payment_attributions.id = ? AND Payment.family_id = ?", attributionID, familyID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrAttributionNotFound
			}
			return err
		}

		payment, err := l.payment(tx, familyID, attribution.PaymentID)
		if err != nil {
			return err
		}

		incomeEvent, err := l.incomeEvent(tx, familyID, attribution.IncomeEventID)
		if err != nil {
			return err
		}

		if err := tx.Unscoped().Delete(&attribution).Error; err != nil {
			return err
		}

		payment.AttributedAmount = payment.AttributedAmount.Sub(attribution.Amount)
		payment.RefreshStatus(l.Today())
		incomeEvent.AllocatedAmount = incomeEvent.AllocatedAmount.Sub(attribution.Amount)

		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		return tx.Save(&incomeEvent).Error
	})
}

// Get returns a single attribution.
func (l *Ledger) Get(familyID, attributionID uuid.UUID) (models.PaymentAttribution, error) {
	var attribution models.PaymentAttribution
	err := l.db.Joins("Payment").
		First(&attribution, "payment_attributions.id = ? AND Payment.family_id = ?", attributionID, familyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PaymentAttribution{}, models.ErrAttributionNotFound
		}
		return models.PaymentAttribution{}, err
	}

	return attribution, nil
}

// ForPayment returns all attributions funding the payment, oldest first.
func (l *Ledger) ForPayment(familyID, paymentID uuid.UUID) ([]models.PaymentAttribution, error) {
	if _, err := l.payment(l.db, familyID, paymentID); err != nil {
		return nil, err
	}

	var attributions []models.PaymentAttribution
	err := l.db.
		Order("created_at ASC").
		Find(&attributions, "payment_id = ?", paymentID).Error
	if err != nil {
		return nil, err
	}

	return attributions, nil
}

// ForIncomeEvent returns all attributions drawing on the income event,
// oldest first.
func (l *Ledger) ForIncomeEvent(familyID, incomeEventID uuid.UUID) ([]models.PaymentAttribution, error) {
	if _, err := l.incomeEvent(l.db, familyID, incomeEventID); err != nil {
		return nil, err
	}

	var attributions []models.PaymentAttribution
	err := l.db.
		Order("created_at ASC").
		Find(&attributions, "income_event_id = ?", incomeEventID).Error
	if err != nil {
		return nil, err
	}

	return attributions, nil
}

func (l *Ledger) payment(tx *gorm.DB, familyID, paymentID uuid.UUID) (models.Payment, error) {
	var payment models.Payment
	err := tx.First(&payment, "id = ? AND family_id = ?", paymentID, familyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, models.ErrPaymentNotFound
		}
		return models.Payment{}, err
	}

	return payment, nil
}

func (l *Ledger) incomeEvent(tx *gorm.DB, familyID, incomeEventID uuid.UUID) (models.IncomeEvent, error) {
	var incomeEvent models.IncomeEvent
	err := tx.First(&incomeEvent, "id = ? AND family_id = ?", incomeEventID, familyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.IncomeEvent{}, models.ErrIncomeEventNotFound
		}
		return models.IncomeEvent{}, err
	}

	return incomeEvent, nil
}
