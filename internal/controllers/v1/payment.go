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

func (co *Controller) registerPaymentRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetPayments)
		r.POST("", co.CreatePayments)
	}

	// Payment with ID
	{
		r.OPTIONS("/:id", httputil.OptionsGetPatchDelete)
		r.GET("/:id", co.GetPayment)
		r.PATCH("/:id", co.UpdatePayment)
		r.DELETE("/:id", co.DeletePayment)

		r.POST("/:id/paid", co.PayPayment)
		r.POST("/:id/cancelled", co.CancelPayment)
		r.GET("/:id/occurrences", co.GetPaymentOccurrences)
	}
}

// getPayment loads a payment by ID, scoped to the family of the request.
func (co *Controller) getPayment(c *gin.Context) (models.Payment, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.Payment{}, httputil.ErrInvalidUUID
	}

	var payment models.Payment
	err := co.db.First(&payment, "id = ? AND family_id = ?", uri.ID.UUID, familyID(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, models.ErrPaymentNotFound
		}
		return models.Payment{}, err
	}

	return payment, nil
}

func (co *Controller) CreatePayments(c *gin.Context) {
	var editables []PaymentEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), PaymentCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := PaymentCreateResponse{}

	for _, editable := range editables {
		payment := editable.model(familyID(c))

		err = co.db.Create(&payment).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newPayment(c, payment)
		r.Data = append(r.Data, PaymentResponse{Data: &data})
	}

	c.JSON(status, r)
}

func (co *Controller) GetPayments(c *gin.Context) {
	var filter PaymentQueryFilter
	if err := c.ShouldBind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), PaymentListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	filterModel := filter.model()

	q := co.db.
		Where("family_id = ?", familyID(c)).
		Order("due_date ASC, payee ASC").
		Where(&filterModel, queryFields...)

	if !filter.From.IsZero() {
		q = q.Where("due_date >= ?", filter.From)
	}

	if !filter.To.IsZero() {
		q = q.Where("due_date <= ?", filter.To)
	}

	var payments []models.Payment
	err := q.Find(&payments).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentListResponse{Error: &s})
		return
	}

	payments = globFilter(payments, func(p models.Payment) string { return p.Payee }, filter.Payee)
	payments = globFilter(payments, func(p models.Payment) string { return p.Note }, filter.Note)

	data := make([]Payment, 0, len(payments))
	for _, payment := range payments {
		data = append(data, newPayment(c, payment))
	}

	// The status filter works on the derived status, so it is applied
	// after the per-payment refresh in newPayment
	if filter.Status != "" {
		filtered := make([]Payment, 0, len(data))
		for _, payment := range data {
			if payment.Status == filter.Status {
				filtered = append(filtered, payment)
			}
		}
		data = filtered
	}

	page, pagination := paginate(data, filter.Offset, limitOrDefault(setFields, filter.Limit))

	c.JSON(http.StatusOK, PaymentListResponse{
		Data:       page,
		Pagination: &pagination,
	})
}

func (co *Controller) GetPayment(c *gin.Context) {
	payment, err := co.getPayment(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	data := newPayment(c, payment)
	c.JSON(http.StatusOK, PaymentResponse{Data: &data})
}

func (co *Controller) UpdatePayment(c *gin.Context) {
	payment, err := co.getPayment(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	if payment.Settled() {
		s := errPaymentSettled.Error()
		c.JSON(status(errPaymentSettled), PaymentResponse{Error: &s})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, PaymentEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	var data PaymentEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	err = co.db.Model(&payment).Select("", updateFields...).Updates(data.model(familyID(c))).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	apiResource := newPayment(c, payment)
	c.JSON(http.StatusOK, PaymentResponse{Data: &apiResource})
}

func (co *Controller) DeletePayment(c *gin.Context) {
	payment, err := co.getPayment(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	err = co.db.Delete(&payment).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// PayPayment settles a payment with the actual amount and date. Both
// default to the scheduled values when unset.
func (co *Controller) PayPayment(c *gin.Context) {
	payment, err := co.getPayment(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	var settle SettleRequest
	err = httputil.BindData(c, &settle)
	if err != nil && !errors.Is(err, httputil.ErrRequestBodyEmpty) {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	amount := payment.Amount
	if settle.Amount.Valid {
		amount = settle.Amount.Decimal
	}

	date := types.DateOf(time.Now())
	if settle.Date != nil {
		date = *settle.Date
	}

	err = payment.MarkPaid(amount, date)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	err = co.db.Save(&payment).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	data := newPayment(c, payment)
	c.JSON(http.StatusOK, PaymentResponse{Data: &data})
}

func (co *Controller) CancelPayment(c *gin.Context) {
	payment, err := co.getPayment(c)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	err = payment.Cancel()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	err = co.db.Save(&payment).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), PaymentResponse{Error: &s})
		return
	}

	data := newPayment(c, payment)
	c.JSON(http.StatusOK, PaymentResponse{Data: &data})
}

// GetPaymentOccurrences previews the recurrence expansion for a payment.
func (co *Controller) GetPaymentOccurrences(c *gin.Context) {
	payment, err := co.getPayment(c)
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
		until = payment.DueDate.AddDate(1, 0, 0)
	}

	c.JSON(http.StatusOK, OccurrencesResponse{
		Data: recurrence.Expand(payment.DueDate, payment.Frequency, until),
	})
}
