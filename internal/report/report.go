// Package report composes the aggregation, recurrence and budget engines
// into the named report shapes consumers need. It combines and reshapes,
// every numeric rule lives in the engine that owns it.
package report

import (
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/aggregate"
	"github.com/paycheckplan/backend/internal/budget"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Composer builds the named reports.
type Composer struct {
	db         *gorm.DB
	aggregator *aggregate.Aggregator
	resolver   *budget.Resolver
}

// New returns a Composer with its engines wired to the given database.
func New(db *gorm.DB) *Composer {
	return &Composer{
		db:         db,
		aggregator: aggregate.New(db),
		resolver:   budget.NewResolver(db),
	}
}

// CashFlowBucket is a period bucket plus the information whether it holds
// actual records or a recurrence forecast.
type CashFlowBucket struct {
	aggregate.PeriodBucket
	Projected bool `json:"projected"`
}

// CashFlowReport is the aggregate series, optionally extended with
// forecast buckets beyond the actual range.
type CashFlowReport struct {
	From    types.Date         `json:"from"`
	To      types.Date         `json:"to"`
	GroupBy aggregate.Interval `json:"groupBy"`
	Buckets []CashFlowBucket   `json:"buckets"`
}

// CashFlow returns the bucketed cash flow for [from, to]. If projectTo is
// after to, recurring income and payment anchors are expanded beyond the
// actual range and returned as additional buckets flagged as projected.
func (c *Composer) CashFlow(familyID uuid.UUID, from, to types.Date, groupBy aggregate.Interval, projectTo types.Date) (CashFlowReport, error) {
	actual, err := c.aggregator.Aggregate(familyID, from, to, groupBy)
	if err != nil {
		return CashFlowReport{}, err
	}

	report := CashFlowReport{
		From:    from,
		To:      to,
		GroupBy: groupBy,
		Buckets: make([]CashFlowBucket, 0, len(actual)),
	}

	running := decimal.Zero
	for _, bucket := range actual {
		running = bucket.RunningBalance
		report.Buckets = append(report.Buckets, CashFlowBucket{PeriodBucket: bucket})
	}

	if !projectTo.IsZero() && projectTo.After(to) {
		forecast, err := c.forecast(familyID, to.AddDate(0, 0, 1), projectTo, groupBy, running)
		if err != nil {
			return CashFlowReport{}, err
		}

		report.To = projectTo
		report.Buckets = append(report.Buckets, forecast...)
	}

	return report, nil
}

// forecast expands all recurring anchors into [from, to] and buckets the
// resulting virtual occurrences the same way the aggregator buckets
// actual records.
func (c *Composer) forecast(familyID uuid.UUID, from, to types.Date, groupBy aggregate.Interval, running decimal.Decimal) ([]CashFlowBucket, error) {
	buckets, err := aggregate.Partition(from, to, groupBy)
	if err != nil {
		return nil, err
	}

	var incomeEvents []models.IncomeEvent
	err = c.db.
		Where("family_id = ? AND status = ?", familyID, models.IncomeEventScheduled).
		Find(&incomeEvents).Error
	if err != nil {
		return nil, err
	}

	var payments []models.Payment
	err = c.db.
		Where("family_id = ? AND status IN ?", familyID, []models.PaymentStatus{models.PaymentScheduled, models.PaymentOverdue, models.PaymentPartial}).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	// The window end is exclusive in the expansion, so extend by one day
	// to include occurrences on the last bucket day.
	windowEnd := to.AddDate(0, 0, 1)

	forecast := make([]CashFlowBucket, 0, len(buckets))
	for _, bucket := range buckets {
		projected := CashFlowBucket{PeriodBucket: bucket, Projected: true}

		for _, incomeEvent := range incomeEvents {
			for _, occurrence := range recurrence.Expand(incomeEvent.Date, incomeEvent.Frequency, windowEnd) {
				if projected.Contains(occurrence) {
					projected.Income = projected.Income.Add(incomeEvent.Amount)
				}
			}
		}

		for _, payment := range payments {
			for _, occurrence := range recurrence.Expand(payment.DueDate, payment.Frequency, windowEnd) {
				if projected.Contains(occurrence) {
					projected.Expenses = projected.Expenses.Add(payment.Amount)
				}
			}
		}

		running = projected.Finalize(running)
		forecast = append(forecast, projected)
	}

	return forecast, nil
}

// MonthSummary is the aggregate of one month with month-over-month deltas.
type MonthSummary struct {
	Month            types.Month               `json:"month"`
	Income           decimal.Decimal           `json:"income"`
	Expenses         decimal.Decimal           `json:"expenses"`
	NetFlow          decimal.Decimal           `json:"netFlow"`
	SavingsRate      decimal.Decimal           `json:"savingsRate"`
	Categories       []aggregate.CategoryTotal `json:"categories"`
	IncomeDelta      decimal.Decimal           `json:"incomeDelta"`      // Difference to the previous month
	ExpensesDelta    decimal.Decimal           `json:"expensesDelta"`    // Difference to the previous month
	SavingsRateDelta decimal.Decimal           `json:"savingsRateDelta"` // Difference to the previous month
}

// MonthlySummary reports one month, with deltas against the month before.
func (c *Composer) MonthlySummary(familyID uuid.UUID, month types.Month) (MonthSummary, error) {
	previous := month.AddDate(0, -1)

	buckets, err := c.aggregator.Aggregate(familyID, previous.First(), month.Last(), aggregate.Month)
	if err != nil {
		return MonthSummary{}, err
	}

	return newMonthSummary(month, buckets[1], buckets[0]), nil
}

func newMonthSummary(month types.Month, current, previous aggregate.PeriodBucket) MonthSummary {
	return MonthSummary{
		Month:            month,
		Income:           current.Income,
		Expenses:         current.Expenses,
		NetFlow:          current.NetFlow,
		SavingsRate:      current.SavingsRate,
		Categories:       current.Categories,
		IncomeDelta:      current.Income.Sub(previous.Income),
		ExpensesDelta:    current.Expenses.Sub(previous.Expenses),
		SavingsRateDelta: current.SavingsRate.Sub(previous.SavingsRate),
	}
}

// AnnualSummary is the per-month series of a year plus the year's totals.
type AnnualSummary struct {
	Year        int                      `json:"year"`
	Months      []aggregate.PeriodBucket `json:"months"`
	Income      decimal.Decimal          `json:"income"`
	Expenses    decimal.Decimal          `json:"expenses"`
	NetFlow     decimal.Decimal          `json:"netFlow"`
	SavingsRate decimal.Decimal          `json:"savingsRate"`
}

// Annual reports all twelve months of a year and the annual totals.
func (c *Composer) Annual(familyID uuid.UUID, year int) (AnnualSummary, error) {
	buckets, err := c.aggregator.Aggregate(familyID, types.NewDate(year, 1, 1), types.NewDate(year, 12, 31), aggregate.Month)
	if err != nil {
		return AnnualSummary{}, err
	}

	summary := AnnualSummary{
		Year:     year,
		Months:   buckets,
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
	}

	for _, bucket := range buckets {
		summary.Income = summary.Income.Add(bucket.Income)
		summary.Expenses = summary.Expenses.Add(bucket.Expenses)
	}

	summary.NetFlow = summary.Income.Sub(summary.Expenses)
	summary.SavingsRate = aggregate.SavingsRate(summary.Income, summary.NetFlow)

	return summary, nil
}

// SavingsRatePoint is one month's savings rate with its month-over-month
// delta.
type SavingsRatePoint struct {
	Month       types.Month     `json:"month"`
	Income      decimal.Decimal `json:"income"`
	NetFlow     decimal.Decimal `json:"netFlow"`
	SavingsRate decimal.Decimal `json:"savingsRate"`
	Delta       decimal.Decimal `json:"delta"` // Difference to the previous point
}

// SavingsRate reports the monthly savings rate series for [from, to].
func (c *Composer) SavingsRate(familyID uuid.UUID, from, to types.Date) ([]SavingsRatePoint, error) {
	buckets, err := c.aggregator.Aggregate(familyID, from, to, aggregate.Month)
	if err != nil {
		return nil, err
	}

	points := make([]SavingsRatePoint, 0, len(buckets))
	for i, bucket := range buckets {
		point := SavingsRatePoint{
			Month:       types.NewMonth(bucket.Start.Year(), bucket.Start.Month()),
			Income:      bucket.Income,
			NetFlow:     bucket.NetFlow,
			SavingsRate: bucket.SavingsRate,
			Delta:       decimal.Zero,
		}

		if i > 0 {
			point.Delta = bucket.SavingsRate.Sub(buckets[i-1].SavingsRate)
		}

		points = append(points, point)
	}

	return points, nil
}

// NetWorthPoint is the accumulated balance at the end of one bucket.
type NetWorthPoint struct {
	Start    types.Date      `json:"start"`
	End      types.Date      `json:"end"`
	NetFlow  decimal.Decimal `json:"netFlow"`
	NetWorth decimal.Decimal `json:"netWorth"` // Opening balance plus cumulative netFlow
}

// NetWorth reports the balance trajectory over [from, to], starting from
// an opening balance supplied by the caller.
func (c *Composer) NetWorth(familyID uuid.UUID, from, to types.Date, groupBy aggregate.Interval, openingBalance decimal.Decimal) ([]NetWorthPoint, error) {
	buckets, err := c.aggregator.Aggregate(familyID, from, to, groupBy)
	if err != nil {
		return nil, err
	}

	points := make([]NetWorthPoint, 0, len(buckets))
	for _, bucket := range buckets {
		points = append(points, NetWorthPoint{
			Start:    bucket.Start,
			End:      bucket.End,
			NetFlow:  bucket.NetFlow,
			NetWorth: openingBalance.Add(bucket.RunningBalance),
		})
	}

	return points, nil
}

// BudgetCategoryRow is one category of the budget overview.
type BudgetCategoryRow struct {
	CategoryID   uuid.UUID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Allocated    decimal.Decimal `json:"allocated"` // The resolved target amount
	Spent        decimal.Decimal `json:"spent"`
	Variance     decimal.Decimal `json:"variance"` // allocated - spent
}

// BudgetOverview joins the month's aggregate with the resolved template
// targets.
type BudgetOverview struct {
	Month      types.Month         `json:"month"`
	Income     decimal.Decimal     `json:"income"`
	Allocated  decimal.Decimal     `json:"allocated"`
	Spent      decimal.Decimal     `json:"spent"`
	Score      decimal.Decimal     `json:"score"` // Budget performance, 0 to 100
	Categories []BudgetCategoryRow `json:"categories"`
}

// Overview computes the per-category budget variance for one month.
//
// The template is resolved against the month's actual income; income can
// be passed explicitly to override that, e.g. for months that have not
// been received yet.
func (c *Composer) Overview(familyID, templateID uuid.UUID, month types.Month, income decimal.Decimal) (BudgetOverview, error) {
	buckets, err := c.aggregator.Aggregate(familyID, month.First(), month.Last(), aggregate.Month)
	if err != nil {
		return BudgetOverview{}, err
	}
	bucket := buckets[0]

	if income.IsZero() {
		income = bucket.Income
	}

	targets, err := c.resolver.Resolve(familyID, templateID, income)
	if err != nil {
		return BudgetOverview{}, err
	}

	spentByCategory := make(map[uuid.UUID]decimal.Decimal, len(bucket.Categories))
	for _, total := range bucket.Categories {
		spentByCategory[total.CategoryID] = total.Spent
	}

	overview := BudgetOverview{
		Month:     month,
		Income:    income,
		Allocated: decimal.Zero,
		Spent:     decimal.Zero,
		Score:     decimal.NewFromInt(100),
	}

	overspent := decimal.Zero
	for _, target := range targets {
		spent, ok := spentByCategory[target.CategoryID]
		if !ok {
			spent = decimal.Zero
		}

		overview.Allocated = overview.Allocated.Add(target.TargetAmount)
		overview.Spent = overview.Spent.Add(spent)

		if over := spent.Sub(target.TargetAmount); over.IsPositive() {
			overspent = overspent.Add(over)
		}

		overview.Categories = append(overview.Categories, BudgetCategoryRow{
			CategoryID:   target.CategoryID,
			CategoryName: target.CategoryName,
			Allocated:    target.TargetAmount,
			Spent:        spent,
			Variance:     target.TargetAmount.Sub(spent),
		})
	}

	if overview.Allocated.IsPositive() {
		score := decimal.NewFromInt(100).Sub(overspent.Div(overview.Allocated).Mul(decimal.NewFromInt(100))).Round(2)
		if score.IsNegative() {
			score = decimal.Zero
		}
		overview.Score = score
	}

	return overview, nil
}

// BudgetProjectionMonth is the resolved template for one projected month.
type BudgetProjectionMonth struct {
	Month           types.Month             `json:"month"`
	ProjectedIncome decimal.Decimal         `json:"projectedIncome"`
	Targets         []budget.CategoryTarget `json:"targets"`
}

// Projection applies the template to the recurrence-projected income of
// the coming months. Months without projected income are returned without
// targets.
func (c *Composer) Projection(familyID, templateID uuid.UUID, from types.Month, months int) ([]BudgetProjectionMonth, error) {
	var incomeEvents []models.IncomeEvent
	err := c.db.
		Where("family_id = ? AND status = ?", familyID, models.IncomeEventScheduled).
		Find(&incomeEvents).Error
	if err != nil {
		return nil, err
	}

	windowEnd := from.AddDate(0, months).First()

	projection := make([]BudgetProjectionMonth, 0, months)
	for i := 0; i < months; i++ {
		month := from.AddDate(0, i)
		income := decimal.Zero

		for _, incomeEvent := range incomeEvents {
			for _, occurrence := range recurrence.Expand(incomeEvent.Date, incomeEvent.Frequency, windowEnd) {
				if month.Contains(occurrence) {
					income = income.Add(incomeEvent.Amount)
				}
			}
		}

		entry := BudgetProjectionMonth{
			Month:           month,
			ProjectedIncome: income,
		}

		if income.IsPositive() {
			targets, err := c.resolver.Resolve(familyID, templateID, income)
			if err != nil {
				return nil, err
			}
			entry.Targets = targets
		}

		projection = append(projection, entry)
	}

	return projection, nil
}
