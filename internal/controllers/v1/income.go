package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	"gorm.io/gorm"
)

func (co *Controller) registerIncomeEventRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetIncomeEvents)
		r.POST("", co.CreateIncomeEvents)
	}

	// IncomeEvent with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetIncomeEvent)
		r.PATCH("/:id", co.UpdateIncomeEvent)
		r.DELETE("/:id", co.DeleteIncomeEvent)

		r.POST("/:id/received", co.ReceiveIncomeEvent)
		r.POST("/:id/cancelled", co.CancelIncomeEvent)
		r.GET("/:id/occurrences", co.GetIncomeEventOccurrences)
	}
}

// getIncomeEvent loads an income event by ID, scoped to the family of the
// request.
func (co *Controller) getIncomeEvent(c *gin.Context) (models.IncomeEvent, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.IncomeEvent{}, httputil.ErrInvalidUUID
	}

	var incomeEvent models.IncomeEvent
	err := co.db.First(&incomeEvent, "id = ? AND family_id = ?", uri.ID.UUID, familyID(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.IncomeEvent{}, models.ErrIncomeEventNotFound
		}
		return models.IncomeEvent{}, err
	}

	return incomeEvent, nil
}

func (co *Controller) CreateIncomeEvents(c *gin.Context) {
	var editables []IncomeEventEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IncomeEventCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := IncomeEventCreateResponse{}

	for _, editable := range editables {
		incomeEvent := editable.model(familyID(c))

		err = co.db.Create(&incomeEvent).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newIncomeEvent(c, incomeEvent)
		r.Data = append(r.Data, IncomeEventResponse{Data: &data})
	}

	c.JSON(status, r)
}

func (co *Controller) GetIncomeEvents(c *gin.Context) {
	var filter IncomeEventQueryFilter
	if err := c.ShouldBind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), IncomeEventListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	filterModel := filter.model()

	q := co.db.
		Where("family_id = ?", familyID(c)).
		Order("date ASC, name ASC").
		Where(&filterModel, queryFields...)

	if !filter.From.IsZero() {
		q = q.Where("date >= ?", filter.From)
	}

	if !filter.To.IsZero() {
		q = q.Where("date <= ?", filter.To)
	}

	var incomeEvents []models.IncomeEvent
	err := q.Find(&incomeEvents).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventListResponse{Error: &s})
		return
	}

	incomeEvents = globFilter(incomeEvents, func(e models.IncomeEvent) string { return e.Name }, filter.Name)
	incomeEvents = globFilter(incomeEvents, func(e models.IncomeEvent) string { return e.Note }, filter.Note)

	page, pagination := paginate(incomeEvents, filter.Offset, limitOrDefault(setFields, filter.Limit))

	data := make([]IncomeEvent, 0, len(page))
	for _, incomeEvent := range page {
		data = append(data, newIncomeEvent(c, incomeEvent))
	}

	c.JSON(http.StatusOK, IncomeEventListResponse{
		Data:       data,
		Pagination: &pagination,
	})
}

func (co *Controller) GetIncomeEvent(c *gin.Context) {
	incomeEvent, err := co.getIncomeEvent(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	data := newIncomeEvent(c, incomeEvent)
	c.JSON(http.StatusOK, IncomeEventResponse{Data: &data})
}

func (co *Controller) UpdateIncomeEvent(c *gin.Context) {
	incomeEvent, err := co.getIncomeEvent(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	if incomeEvent.Status != models.IncomeEventScheduled {
		s := errIncomeEventSettled.Error()
		c.JSON(status(errIncomeEventSettled), IncomeEventResponse{Error: &s})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, IncomeEventEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	var data IncomeEventEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	err = co.db.Model(&incomeEvent).Select("", updateFields...).Updates(data.model(familyID(c))).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	apiResource := newIncomeEvent(c, incomeEvent)
	c.JSON(http.StatusOK, IncomeEventResponse{Data: &apiResource})
}

func (co *Controller) DeleteIncomeEvent(c *gin.Context) {
	incomeEvent, err := co.getIncomeEvent(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	err = co.db.Delete(&incomeEvent).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// ReceiveIncomeEvent settles an income event with the actual amount and
// date. Both default to the scheduled values when unset.
func (co *Controller) ReceiveIncomeEvent(c *gin.Context) {
	incomeEvent, err := co.getIncomeEvent(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	var settle SettleRequest
	err = httputil.BindData(c, &settle)
	if err != nil && !errors.Is(err, httputil.ErrRequestBodyEmpty) {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	amount := incomeEvent.Amount
	if settle.Amount.Valid {
		amount = settle.Amount.Decimal
	}

	date := types.DateOf(time.Now())
	if settle.Date != nil {
		date = *settle.Date
	}

	err = incomeEvent.MarkReceived(amount, date)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	err = co.db.Save(&incomeEvent).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	data := newIncomeEvent(c, incomeEvent)
	c.JSON(http.StatusOK, IncomeEventResponse{Data: &data})
}

func (co *Controller) CancelIncomeEvent(c *gin.Context) {
	incomeEvent, err := co.getIncomeEvent(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	err = incomeEvent.Cancel()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	err = co.db.Save(&incomeEvent).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IncomeEventResponse{Error: &s})
		return
	}

	data := newIncomeEvent(c, incomeEvent)
	c.JSON(http.StatusOK, IncomeEventResponse{Data: &data})
}

// GetIncomeEventOccurrences previews the recurrence expansion for an
// income event.
func (co *Controller) GetIncomeEventOccurrences(c *gin.Context) {
	incomeEvent, err := co.getIncomeEvent(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), OccurrencesResponse{Error: &s})
		return
	}

	var query OccurrenceQuery
	if err := c.ShouldBind(&query); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), OccurrencesResponse{Error: &s})
		return
	}

	until := query.Until
	if until.IsZero() {
		until = incomeEvent.Date.AddDate(1, 0, 0)
	}

	c.JSON(http.StatusOK, OccurrencesResponse{
		Data: recurrence.Expand(incomeEvent.Date, incomeEvent.Frequency, until),
	})
}
