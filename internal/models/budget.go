package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetCategory is a named spending bucket.
type BudgetCategory struct {
	DefaultModel
	FamilyID uuid.UUID `json:"familyId" gorm:"index;uniqueIndex:category_name_family"`
	Name     string    `json:"name" gorm:"uniqueIndex:category_name_family"`
	Note     string    `json:"note"`
	Archived bool      `json:"archived" default:"false"` // Is the category archived?
}

func (c *BudgetCategory) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)

	return nil
}

// BudgetTemplate is a reusable set of percentage allocations that can be
// resolved against a concrete income amount.
type BudgetTemplate struct {
	DefaultModel
	FamilyID    uuid.UUID          `json:"familyId" gorm:"index;uniqueIndex:template_name_family"`
	Name        string             `json:"name" gorm:"uniqueIndex:template_name_family"`
	Note        string             `json:"note"`
	Allocations []BudgetAllocation `json:"allocations" gorm:"foreignKey:TemplateID"`
}

func (t *BudgetTemplate) BeforeSave(_ *gorm.DB) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Note = strings.TrimSpace(t.Note)

	return nil
}

// BudgetAllocation assigns a percentage of income to a category within a
// template.
type BudgetAllocation struct {
	DefaultModel
	TemplateID uuid.UUID       `json:"templateId" gorm:"index;uniqueIndex:allocation_template_category"`
	Template   BudgetTemplate  `json:"-"`
	CategoryID uuid.UUID       `json:"categoryId" gorm:"uniqueIndex:allocation_template_category"`
	Category   BudgetCategory  `json:"-"`
	Percentage decimal.Decimal `json:"percentage" gorm:"type:DECIMAL(20,8)"`
}

func (a *BudgetAllocation) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*BudgetAllocation)
	return a.checkIntegrity(tx, *toSave)
}

func (a *BudgetAllocation) BeforeUpdate(tx *gorm.DB) (err error) {
	toSave := tx.Statement.Dest.(BudgetAllocation)

	if tx.Statement.Changed("TemplateID") || tx.Statement.Changed("CategoryID") {
		err := a.checkIntegrity(tx, toSave)
		if err != nil {
			return err
		}
	}

	return nil
}

// checkIntegrity verifies that the referenced template and category exist.
func (a *BudgetAllocation) checkIntegrity(tx *gorm.DB, toSave BudgetAllocation) error {
	err := tx.First(&BudgetTemplate{}, toSave.TemplateID).Error
	if err != nil {
		return err
	}

	return tx.First(&BudgetCategory{}, toSave.CategoryID).Error
}

// AfterSave verifies the percentage bounds and that the template's
// allocations do not sum to more than 100. A violation rolls the
// transaction back.
func (a *BudgetAllocation) AfterSave(tx *gorm.DB) error {
	if a.Percentage.IsNegative() ||
		a.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPercentageOutOfRange
	}

	var sum decimal.NullDecimal
	err := tx.Model(&BudgetAllocation{}).
		Where("template_id = ?", a.TemplateID).
		Select("SUM(percentage)").
		Row().
		Scan(&sum)
	if err != nil {
		return err
	}

	if sum.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return ErrTemplatePercentageSum
	}

	return nil
}
