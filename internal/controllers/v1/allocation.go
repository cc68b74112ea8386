package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (co *Controller) registerAllocationRoutes(r *gin.RouterGroup) {
	// Allocations are created through their template, only the detail
	// routes live here
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetAllocation)
		r.PATCH("/:id", co.UpdateAllocation)
		r.DELETE("/:id", co.DeleteAllocation)
	}
}

// AllocationEditable represents all user configurable parameters
type AllocationEditable struct {
	CategoryID uuid.UUID       `json:"categoryId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the category the percentage goes to
	Percentage decimal.Decimal `json:"percentage" example:"30"`                                   // Percentage of income, 0 to 100
}

func (editable AllocationEditable) model(templateID uuid.UUID) models.BudgetAllocation {
	return models.BudgetAllocation{
		TemplateID: templateID,
		CategoryID: editable.CategoryID,
		Percentage: editable.Percentage,
	}
}

type AllocationLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/allocations/d1b4a8f0-97e5-4be5-a2ae-e4a713710a4d"`   // The allocation itself
	Template string `json:"template" example:"https://example.com/api/v1/templates/3b1ea324-d438-4419-882a-2fc91d71772f"` // The template it belongs to
	Category string `json:"category" example:"https://example.com/api/v1/categories/52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // The category it assigns to
}

type Allocation struct {
	models.BudgetAllocation
	Links AllocationLinks `json:"links"`
}

func newAllocation(c *gin.Context, model models.BudgetAllocation) Allocation {
	url := httputil.RequestPathV1(c)

	return Allocation{
		BudgetAllocation: model,
		Links: AllocationLinks{
			Self:     fmt.Sprintf("%s/allocations/%s", url, model.ID),
			Template: fmt.Sprintf("%s/templates/%s", url, model.TemplateID),
			Category: fmt.Sprintf("%s/categories/%s", url, model.CategoryID),
		},
	}
}

type AllocationCreateResponse struct {
	Data  []AllocationResponse `json:"data"`  // List of the created allocations or their respective error
	Error *string              `json:"error"` // The error, if any occurred
}

func (r *AllocationCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, AllocationResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AllocationResponse struct {
	Data  *Allocation `json:"data"`  // Data for the allocation
	Error *string     `json:"error"` // The error, if any occurred
}

// getAllocation loads an allocation by ID. The family scope check goes
// through the owning template.
func (co *Controller) getAllocation(c *gin.Context) (models.BudgetAllocation, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.BudgetAllocation{}, httputil.ErrInvalidUUID
	}

	var allocation models.BudgetAllocation
	err := co.db.
		Joins("Template").
		First(&allocation, "budget_allocations.id = ? AND Template.family_id = ?", uri.ID.UUID, familyID(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BudgetAllocation{}, fmt.Errorf("%w: there is no allocation matching the ID you specified", models.ErrNotFound)
		}
		return models.BudgetAllocation{}, err
	}

	return allocation, nil
}

// CreateAllocations creates allocations for the template in the URI.
func (co *Controller) CreateAllocations(c *gin.Context) {
	template, err := co.getTemplate(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationCreateResponse{Error: &e})
		return
	}

	var editables []AllocationEditable
	err = httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := AllocationCreateResponse{}

	for _, editable := range editables {
		allocation := editable.model(template.ID)

		err = co.db.Create(&allocation).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newAllocation(c, allocation)
		r.Data = append(r.Data, AllocationResponse{Data: &data})
	}

	c.JSON(status, r)
}

func (co *Controller) GetAllocation(c *gin.Context) {
	allocation, err := co.getAllocation(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	data := newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &data})
}

func (co *Controller) UpdateAllocation(c *gin.Context) {
	allocation, err := co.getAllocation(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, AllocationEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	var data AllocationEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	err = co.db.Model(&allocation).Select("", updateFields...).Updates(data.model(allocation.TemplateID)).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	apiResource := newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &apiResource})
}

func (co *Controller) DeleteAllocation(c *gin.Context) {
	allocation, err := co.getAllocation(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	err = co.db.Delete(&allocation).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
