package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/budget"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (co *Controller) registerTemplateRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetTemplates)
		r.POST("", co.CreateTemplates)
	}

	// Template with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetTemplate)
		r.PATCH("/:id", co.UpdateTemplate)
		r.DELETE("/:id", co.DeleteTemplate)

		r.POST("/:id/allocations", co.CreateAllocations)
		r.GET("/:id/resolve", co.ResolveTemplate)
	}
}

// TemplateEditable represents all user configurable parameters
type TemplateEditable struct {
	Name string `json:"name" example:"50/30/20" default:""`                       // Name of the template, unique within the family
	Note string `json:"note" example:"Needs, wants, savings split" default:""`    // Notes about the template
}

func (editable TemplateEditable) model(familyID uuid.UUID) models.BudgetTemplate {
	return models.BudgetTemplate{
		FamilyID: familyID,
		Name:     editable.Name,
		Note:     editable.Note,
	}
}

type TemplateLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/templates/3b1ea324-d438-4419-882a-2fc91d71772f"`                    // The template itself
	Allocations string `json:"allocations" example:"https://example.com/api/v1/templates/3b1ea324-d438-4419-882a-2fc91d71772f/allocations"` // Allocation creation for this template
	Resolve     string `json:"resolve" example:"https://example.com/api/v1/templates/3b1ea324-d438-4419-882a-2fc91d71772f/resolve"`         // Resolve targets against an income amount
}

type Template struct {
	models.BudgetTemplate
	Links TemplateLinks `json:"links"`
}

func newTemplate(c *gin.Context, model models.BudgetTemplate) Template {
	url := httputil.RequestPathV1(c)

	return Template{
		BudgetTemplate: model,
		Links: TemplateLinks{
			Self:        fmt.Sprintf("%s/templates/%s", url, model.ID),
			Allocations: fmt.Sprintf("%s/templates/%s/allocations", url, model.ID),
			Resolve:     fmt.Sprintf("%s/templates/%s/resolve", url, model.ID),
		},
	}
}

type TemplateListResponse struct {
	Data       []Template  `json:"data"`       // List of templates
	Error      *string     `json:"error"`      // The error, if any occurred
	Pagination *Pagination `json:"pagination"` // Pagination information
}

type TemplateCreateResponse struct {
	Data  []TemplateResponse `json:"data"`  // List of the created templates or their respective error
	Error *string            `json:"error"` // The error, if any occurred
}

func (r *TemplateCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, TemplateResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TemplateResponse struct {
	Data  *Template `json:"data"`  // Data for the template
	Error *string   `json:"error"` // The error, if any occurred
}

type TemplateQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // By name, supports * as wildcard
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first template returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of templates to return. Defaults to 50.
}

// ResolveQuery is the query for the resolve endpoint.
type ResolveQuery struct {
	Income decimal.Decimal `form:"income" example:"4000.00"` // The income amount to resolve the template against
}

type ResolveResponse struct {
	Data  []budget.CategoryTarget `json:"data"`  // The resolved per-category targets
	Error *string                 `json:"error"` // The error, if any occurred
}

// getTemplate loads a template with its allocations, scoped to the family
// of the request.
func (co *Controller) getTemplate(c *gin.Context) (models.BudgetTemplate, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.BudgetTemplate{}, httputil.ErrInvalidUUID
	}

	var template models.BudgetTemplate
	err := co.db.
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("budget_allocations.created_at ASC")
		}).
		First(&template, "id = ? AND family_id = ?", uri.ID.UUID, familyID(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BudgetTemplate{}, models.ErrTemplateNotFound
		}
		return models.BudgetTemplate{}, err
	}

	return template, nil
}

func (co *Controller) CreateTemplates(c *gin.Context) {
	var editables []TemplateEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TemplateCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := TemplateCreateResponse{}

	for _, editable := range editables {
		template := editable.model(familyID(c))

		err = co.db.Create(&template).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newTemplate(c, template)
		r.Data = append(r.Data, TemplateResponse{Data: &data})
	}

	c.JSON(status, r)
}

func (co *Controller) GetTemplates(c *gin.Context) {
	var filter TemplateQueryFilter
	if err := c.ShouldBind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), TemplateListResponse{Error: &s})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	var templates []models.BudgetTemplate
	err := co.db.
		Preload("Allocations").
		Where("family_id = ?", familyID(c)).
		Order("name ASC").
		Find(&templates).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateListResponse{Error: &s})
		return
	}

	templates = globFilter(templates, func(t models.BudgetTemplate) string { return t.Name }, filter.Name)

	page, pagination := paginate(templates, filter.Offset, limitOrDefault(setFields, filter.Limit))

	data := make([]Template, 0, len(page))
	for _, template := range page {
		data = append(data, newTemplate(c, template))
	}

	c.JSON(http.StatusOK, TemplateListResponse{
		Data:       data,
		Pagination: &pagination,
	})
}

func (co *Controller) GetTemplate(c *gin.Context) {
	template, err := co.getTemplate(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	data := newTemplate(c, template)
	c.JSON(http.StatusOK, TemplateResponse{Data: &data})
}

func (co *Controller) UpdateTemplate(c *gin.Context) {
	template, err := co.getTemplate(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TemplateEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	var data TemplateEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	err = co.db.Model(&template).Select("", updateFields...).Updates(data.model(familyID(c))).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	apiResource := newTemplate(c, template)
	c.JSON(http.StatusOK, TemplateResponse{Data: &apiResource})
}

func (co *Controller) DeleteTemplate(c *gin.Context) {
	template, err := co.getTemplate(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	// Allocations go with the template
	err = co.db.Where("template_id = ?", template.ID).Delete(&models.BudgetAllocation{}).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	err = co.db.Delete(&template).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TemplateResponse{Error: &s})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// ResolveTemplate resolves the template's allocations against an income
// amount and returns the per-category targets.
func (co *Controller) ResolveTemplate(c *gin.Context) {
	template, err := co.getTemplate(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ResolveResponse{Error: &s})
		return
	}

	var query ResolveQuery
	if err := c.ShouldBind(&query); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), ResolveResponse{Error: &s})
		return
	}

	if !query.Income.IsPositive() {
		s := errIncomeRequired.Error()
		c.JSON(status(errIncomeRequired), ResolveResponse{Error: &s})
		return
	}

	targets, err := co.resolver.Resolve(familyID(c), template.ID, query.Income)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ResolveResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, ResolveResponse{Data: targets})
}
