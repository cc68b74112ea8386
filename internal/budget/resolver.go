// Package budget resolves percentage-based budget templates into concrete
// per-category target amounts.
package budget

import (
	"errors"

	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// CategoryTarget is the concrete dollar target for one category.
type CategoryTarget struct {
	CategoryID   uuid.UUID       `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Percentage   decimal.Decimal `json:"percentage"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
}

// Resolver turns budget templates into category targets.
type Resolver struct {
	db *gorm.DB
}

// NewResolver returns a Resolver using the given database.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve computes the per-category targets of a template for a concrete
// income amount.
//
// Each target is rounded half-up to the currency's minor unit
// independently, so the sum of all targets can deviate from the exact
// split by up to one cent per category. The residual is reported as is,
// never silently corrected.
func (r *Resolver) Resolve(familyID, templateID uuid.UUID, incomeAmount decimal.Decimal) ([]CategoryTarget, error) {
	if !incomeAmount.IsPositive() {
		return nil, models.ErrAmountNotPositive
	}

	var template models.BudgetTemplate
	err := r.db.
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Allocations.Category").
		First(&template, "id = ? AND family_id = ?", templateID, familyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrTemplateNotFound
		}
		return nil, err
	}

	sum := decimal.Zero
	targets := make([]CategoryTarget, 0, len(template.Allocations))

	for _, allocation := range template.Allocations {
		if allocation.Percentage.IsNegative() || allocation.Percentage.GreaterThan(hundred) {
			return nil, models.ErrPercentageOutOfRange
		}

		if allocation.Category.ID == uuid.Nil || allocation.Category.Archived {
			return nil, models.ErrTemplateCategoryGone
		}

		sum = sum.Add(allocation.Percentage)

		targets = append(targets, CategoryTarget{
			CategoryID:   allocation.CategoryID,
			CategoryName: allocation.Category.Name,
			Percentage:   allocation.Percentage,
			TargetAmount: incomeAmount.Mul(allocation.Percentage).Div(hundred).Round(2),
		})
	}

	if sum.GreaterThan(hundred) {
		return nil, models.ErrTemplatePercentageSum
	}

	return targets, nil
}
