// Package aggregate buckets income, payment and attribution records into
// calendar-aligned periods and computes per-period summary statistics.
package aggregate

import (
	"sort"

	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Interval determines the calendar alignment of the buckets.
type Interval string

const (
	Day     Interval = "day"
	Week    Interval = "week"
	Month   Interval = "month"
	Quarter Interval = "quarter"
	Year    Interval = "year"
)

// Valid reports whether i is a known interval.
func (i Interval) Valid() bool {
	switch i {
	case Day, Week, Month, Quarter, Year:
		return true
	}

	return false
}

// CategoryTotal is the per-category slice of one bucket.
type CategoryTotal struct {
	CategoryID uuid.UUID       `json:"categoryId"` // Nil UUID for uncategorized payments
	Name       string          `json:"name"`
	Spent      decimal.Decimal `json:"spent"`      // Sum of payment effective amounts
	Attributed decimal.Decimal `json:"attributed"` // Sum of attribution amounts funding those payments
}

// PeriodBucket is one calendar-aligned time window with aggregated totals.
//
// Buckets without any records still appear with zero values, the series
// has no gaps.
type PeriodBucket struct {
	Start          types.Date      `json:"start"` // First day of the bucket
	End            types.Date      `json:"end"`   // Last day of the bucket, inclusive
	Income         decimal.Decimal `json:"income"`
	Expenses       decimal.Decimal `json:"expenses"`
	NetFlow        decimal.Decimal `json:"netFlow"`        // income - expenses
	SavingsRate    decimal.Decimal `json:"savingsRate"`    // netFlow / income * 100, 0 when income is 0
	RunningBalance decimal.Decimal `json:"runningBalance"` // Cumulative netFlow since the first bucket
	Categories     []CategoryTotal `json:"categories"`
}

// Aggregator computes period buckets for a family.
type Aggregator struct {
	db *gorm.DB
}

// New returns an Aggregator using the given database.
func New(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Aggregate partitions [from, to] into contiguous calendar-aligned buckets
// and sums the family's records into them.
//
// Income events count with their effective amount on their effective date,
// payments likewise; cancelled records are excluded. The savings rate uses
// the canonical formula netFlow / income * 100.
func (a *Aggregator) Aggregate(familyID uuid.UUID, from, to types.Date, groupBy Interval) ([]PeriodBucket, error) {
	// Validated and partitioned before anything is loaded
	buckets, err := Partition(from, to, groupBy)
	if err != nil {
		return nil, err
	}

	var incomeEvents []models.IncomeEvent
	err = a.db.
		Where("family_id = ? AND status <> ?", familyID, models.IncomeEventCancelled).
		Find(&incomeEvents).Error
	if err != nil {
		return nil, err
	}

	var payments []models.Payment
	err = a.db.
		Where("family_id = ? AND status <> ?", familyID, models.PaymentCancelled).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	var attributions []models.PaymentAttribution
	err = a.db.
		Joins("Payment").
		Where("Payment.family_id = ? AND Payment.status <> ?", familyID, models.PaymentCancelled).
		Find(&attributions).Error
	if err != nil {
		return nil, err
	}

	categoryNames, err := a.categoryNames(familyID)
	if err != nil {
		return nil, err
	}

	running := decimal.Zero

	for i := range buckets {
		bucket := &buckets[i]

		for _, incomeEvent := range incomeEvents {
			if bucket.Contains(incomeEvent.EffectiveDate()) {
				bucket.Income = bucket.Income.Add(incomeEvent.EffectiveAmount())
			}
		}

		categories := make(map[uuid.UUID]*CategoryTotal)
		for _, payment := range payments {
			if !bucket.Contains(payment.EffectiveDate()) {
				continue
			}

			bucket.Expenses = bucket.Expenses.Add(payment.EffectiveAmount())
			total := categoryTotal(categories, payment.CategoryID, categoryNames)
			total.Spent = total.Spent.Add(payment.EffectiveAmount())
		}

		for _, attribution := range attributions {
			if !bucket.Contains(attribution.Payment.EffectiveDate()) {
				continue
			}

			total := categoryTotal(categories, attribution.Payment.CategoryID, categoryNames)
			total.Attributed = total.Attributed.Add(attribution.Amount)
		}

		bucket.Categories = sortedTotals(categories)
		running = bucket.Finalize(running)
	}

	return buckets, nil
}

// Partition returns the contiguous, zero-valued, calendar-aligned buckets
// covering [from, to]. A zero-length range yields exactly one bucket.
func Partition(from, to types.Date, groupBy Interval) ([]PeriodBucket, error) {
	if !groupBy.Valid() {
		return nil, models.ErrIntervalInvalid
	}

	if from.After(to) {
		return nil, models.ErrDateRangeInvalid
	}

	buckets := []PeriodBucket{}
	for start := alignStart(from, groupBy); !start.After(to); start = advance(start, groupBy) {
		buckets = append(buckets, PeriodBucket{
			Start:       start,
			End:         advance(start, groupBy).AddDate(0, 0, -1),
			Income:      decimal.Zero,
			Expenses:    decimal.Zero,
			NetFlow:     decimal.Zero,
			SavingsRate: decimal.Zero,
		})
	}

	return buckets, nil
}

// SavingsRate is the canonical savings rate formula:
// netFlow / income * 100 when income is positive, else 0.
func SavingsRate(income, netFlow decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}

	return netFlow.Div(income).Mul(decimal.NewFromInt(100)).Round(2)
}

// Contains reports whether the date falls into the bucket.
func (b PeriodBucket) Contains(d types.Date) bool {
	return !d.Before(b.Start) && !d.After(b.End)
}

// Finalize derives the computed fields from Income and Expenses, carrying
// the running balance, and returns the new running balance.
func (b *PeriodBucket) Finalize(running decimal.Decimal) decimal.Decimal {
	b.NetFlow = b.Income.Sub(b.Expenses)
	b.SavingsRate = SavingsRate(b.Income, b.NetFlow)
	b.RunningBalance = running.Add(b.NetFlow)

	return b.RunningBalance
}

func (a *Aggregator) categoryNames(familyID uuid.UUID) (map[uuid.UUID]string, error) {
	var categories []models.BudgetCategory
	err := a.db.Where("family_id = ?", familyID).Find(&categories).Error
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	return names, nil
}

func categoryTotal(totals map[uuid.UUID]*CategoryTotal, categoryID *uuid.UUID, names map[uuid.UUID]string) *CategoryTotal {
	id := uuid.Nil
	if categoryID != nil {
		id = *categoryID
	}

	total, ok := totals[id]
	if !ok {
		total = &CategoryTotal{
			CategoryID: id,
			Name:       names[id],
			Spent:      decimal.Zero,
			Attributed: decimal.Zero,
		}
		totals[id] = total
	}

	return total
}

func sortedTotals(totals map[uuid.UUID]*CategoryTotal) []CategoryTotal {
	result := make([]CategoryTotal, 0, len(totals))
	for _, total := range totals {
		result = append(result, *total)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].CategoryID.String() < result[j].CategoryID.String()
	})

	return result
}

// alignStart returns the first day of the calendar period the date is in.
func alignStart(d types.Date, groupBy Interval) types.Date {
	switch groupBy {
	case Week:
		// ISO weeks, Monday is the first day
		offset := (int(d.Time().Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case Month:
		return types.NewDate(d.Year(), d.Month(), 1)
	case Quarter:
		month := d.Month() - (d.Month()-1)%3
		return types.NewDate(d.Year(), month, 1)
	case Year:
		return types.NewDate(d.Year(), 1, 1)
	}

	return d
}

// advance returns the start of the period following the aligned start.
func advance(start types.Date, groupBy Interval) types.Date {
	switch groupBy {
	case Day:
		return start.AddDate(0, 0, 1)
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	case Quarter:
		return start.AddDate(0, 3, 0)
	}

	return start.AddDate(1, 0, 0)
}
