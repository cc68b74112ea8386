package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/models"
	"gorm.io/gorm"
)

func (co *Controller) registerCategoryRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetCategories)
		r.POST("", co.CreateCategories)
	}

	// Category with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetCategory)
		r.PATCH("/:id", co.UpdateCategory)
		r.DELETE("/:id", co.DeleteCategory)
	}
}

// CategoryEditable represents all user configurable parameters
type CategoryEditable struct {
	Name     string `json:"name" example:"Housing" default:""`            // Name of the category, unique within the family
	Note     string `json:"note" example:"Rent and utilities" default:""` // Notes about the category
	Archived bool   `json:"archived" example:"true" default:"false"`      // Is the category archived?
}

func (editable CategoryEditable) model(familyID uuid.UUID) models.BudgetCategory {
	return models.BudgetCategory{
		FamilyID: familyID,
		Name:     editable.Name,
		Note:     editable.Note,
		Archived: editable.Archived,
	}
}

type CategoryLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91d71772f"`              // The category itself
	Payments string `json:"payments" example:"https://example.com/api/v1/payments?category=3b1ea324-d438-4419-882a-2fc91d71772f"`   // Payments in this category
}

type Category struct {
	models.BudgetCategory
	Links CategoryLinks `json:"links"`
}

func newCategory(c *gin.Context, model models.BudgetCategory) Category {
	url := httputil.RequestPathV1(c)

	return Category{
		BudgetCategory: model,
		Links: CategoryLinks{
			Self:     fmt.Sprintf("%s/categories/%s", url, model.ID),
			Payments: fmt.Sprintf("%s/payments?category=%s", url, model.ID),
		},
	}
}

type CategoryListResponse struct {
	Data       []Category  `json:"data"`       // List of categories
	Error      *string     `json:"error"`      // The error, if any occurred
	Pagination *Pagination `json:"pagination"` // Pagination information
}

type CategoryCreateResponse struct {
	Data  []CategoryResponse `json:"data"`  // List of the created categories or their respective error
	Error *string            `json:"error"` // The error, if any occurred
}

func (r *CategoryCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, CategoryResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type CategoryResponse struct {
	Data  *Category `json:"data"`  // Data for the category
	Error *string   `json:"error"` // The error, if any occurred
}

type CategoryQueryFilter struct {
	Name     string `form:"name" filterField:"false"`   // By name, supports * as wildcard
	Archived bool   `form:"archived"`                   // Is the category archived?
	Offset   uint   `form:"offset" filterField:"false"` // The offset of the first category returned. Defaults to 0.
	Limit    int    `form:"limit" filterField:"false"`  // Maximum number of categories to return. Defaults to 50.
}

func (f CategoryQueryFilter) model() models.BudgetCategory {
	return models.BudgetCategory{
		Archived: f.Archived,
	}
}

// getCategory loads a category by ID, scoped to the family of the request.
func (co *Controller) getCategory(c *gin.Context) (models.BudgetCategory, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.BudgetCategory{}, httputil.ErrInvalidUUID
	}

	var category models.BudgetCategory
	err := co.db.First(&category, "id = ? AND family_id = ?", uri.ID.UUID, familyID(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BudgetCategory{}, models.ErrCategoryNotFound
		}
		return models.BudgetCategory{}, err
	}

	return category, nil
}

func (co *Controller) CreateCategories(c *gin.Context) {
	var editables []CategoryEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategoryCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := CategoryCreateResponse{}

	for _, editable := range editables {
		category := editable.model(familyID(c))

		err = co.db.Create(&category).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newCategory(c, category)
		r.Data = append(r.Data, CategoryResponse{Data: &data})
	}

	c.JSON(status, r)
}

func (co *Controller) GetCategories(c *gin.Context) {
	var filter CategoryQueryFilter
	if err := c.ShouldBind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), CategoryListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	filterModel := filter.model()

	var categories []models.BudgetCategory
	err := co.db.
		Where("family_id = ?", familyID(c)).
		Order("name ASC").
		Where(&filterModel, queryFields...).
		Find(&categories).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryListResponse{Error: &s})
		return
	}

	categories = globFilter(categories, func(cat models.BudgetCategory) string { return cat.Name }, filter.Name)

	page, pagination := paginate(categories, filter.Offset, limitOrDefault(setFields, filter.Limit))

	data := make([]Category, 0, len(page))
	for _, category := range page {
		data = append(data, newCategory(c, category))
	}

	c.JSON(http.StatusOK, CategoryListResponse{
		Data:       data,
		Pagination: &pagination,
	})
}

func (co *Controller) GetCategory(c *gin.Context) {
	category, err := co.getCategory(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	data := newCategory(c, category)
	c.JSON(http.StatusOK, CategoryResponse{Data: &data})
}

func (co *Controller) UpdateCategory(c *gin.Context) {
	category, err := co.getCategory(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, CategoryEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	var data CategoryEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	err = co.db.Model(&category).Select("", updateFields...).Updates(data.model(familyID(c))).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	apiResource := newCategory(c, category)
	c.JSON(http.StatusOK, CategoryResponse{Data: &apiResource})
}

func (co *Controller) DeleteCategory(c *gin.Context) {
	category, err := co.getCategory(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	err = co.db.Delete(&category).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryResponse{Error: &s})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
