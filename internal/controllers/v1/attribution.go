package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/models"
	pp_uuid "github.com/paycheckplan/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

func (co *Controller) registerAttributionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetAttributions)
		r.POST("", co.CreateAttributions)
	}

	// Attribution with ID. Attributions are immutable, there is no PATCH.
	{
		r.OPTIONS("/:id", httputil.OptionsGetDelete)
		r.GET("/:id", co.GetAttribution)
		r.DELETE("/:id", co.DeleteAttribution)
	}
}

// AttributionEditable represents all user configurable parameters
type AttributionEditable struct {
	PaymentID     uuid.UUID              `json:"paymentId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"`     // ID of the payment being funded
	IncomeEventID uuid.UUID              `json:"incomeEventId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the income event funding it
	Amount        decimal.Decimal        `json:"amount" example:"450.00"`                                      // The attributed amount
	Kind          models.AttributionKind `json:"kind" example:"manual" default:"manual"`                       // How the attribution was created
}

type AttributionLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/attributions/d1b4a8f0-97e5-4be5-a2ae-e4a713710a4d"`    // The attribution itself
	Payment     string `json:"payment" example:"https://example.com/api/v1/payments/3b1ea324-d438-4419-882a-2fc91d71772f"`     // The funded payment
	IncomeEvent string `json:"incomeEvent" example:"https://example.com/api/v1/income-events/52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // The funding income event
}

type Attribution struct {
	models.PaymentAttribution
	Links AttributionLinks `json:"links"`
}

func newAttribution(c *gin.Context, model models.PaymentAttribution) Attribution {
	url := httputil.RequestPathV1(c)

	return Attribution{
		PaymentAttribution: model,
		Links: AttributionLinks{
			Self:        fmt.Sprintf("%s/attributions/%s", url, model.ID),
			Payment:     fmt.Sprintf("%s/payments/%s", url, model.PaymentID),
			IncomeEvent: fmt.Sprintf("%s/income-events/%s", url, model.IncomeEventID),
		},
	}
}

type AttributionListResponse struct {
	Data       []Attribution `json:"data"`       // List of attributions
	Error      *string       `json:"error"`      // The error, if any occurred
	Pagination *Pagination   `json:"pagination"` // Pagination information
}

type AttributionCreateResponse struct {
	Data  []AttributionResponse `json:"data"`  // List of the created attributions or their respective error
	Error *string               `json:"error"` // The error, if any occurred
}

func (r *AttributionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, AttributionResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AttributionResponse struct {
	Data  *Attribution `json:"data"`  // Data for the attribution
	Error *string      `json:"error"` // The error, if any occurred
}

type AttributionQueryFilter struct {
	PaymentID     pp_uuid.UUID `form:"payment" filterField:"false"`     // By ID of the funded payment
	IncomeEventID pp_uuid.UUID `form:"incomeEvent" filterField:"false"` // By ID of the funding income event
	Offset        uint         `form:"offset" filterField:"false"`      // The offset of the first attribution returned. Defaults to 0.
	Limit         int          `form:"limit" filterField:"false"`       // Maximum number of attributions to return. Defaults to 50.
}

func (co *Controller) CreateAttributions(c *gin.Context) {
	var editables []AttributionEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AttributionCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := AttributionCreateResponse{}

	for _, editable := range editables {
		attribution, err := co.ledger.Create(familyID(c), editable.PaymentID, editable.IncomeEventID, editable.Amount, editable.Kind)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newAttribution(c, attribution)
		r.Data = append(r.Data, AttributionResponse{Data: &data})
	}

	c.JSON(status, r)
}

func (co *Controller) GetAttributions(c *gin.Context) {
	var filter AttributionQueryFilter
	if err := c.ShouldBind(&filter); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), AttributionListResponse{Error: &s})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	var attributions []models.PaymentAttribution
	var err error

	// The parent-scoped listings check that the parent exists and belongs
	// to the family, so they go through the ledger
	switch {
	case filter.PaymentID != pp_uuid.Nil:
		attributions, err = co.ledger.ForPayment(familyID(c), filter.PaymentID.UUID)
	case filter.IncomeEventID != pp_uuid.Nil:
		attributions, err = co.ledger.ForIncomeEvent(familyID(c), filter.IncomeEventID.UUID)
	default:
		err = co.db.
			Joins("Payment").
			Where("Payment.family_id = ?", familyID(c)).
			Order("payment_attributions.created_at ASC").
			Find(&attributions).Error
	}

	if err != nil {
		s := err.Error()
		c.JSON(status(err), AttributionListResponse{Error: &s})
		return
	}

	page, pagination := paginate(attributions, filter.Offset, limitOrDefault(setFields, filter.Limit))

	data := make([]Attribution, 0, len(page))
	for _, attribution := range page {
		data = append(data, newAttribution(c, attribution))
	}

	c.JSON(http.StatusOK, AttributionListResponse{
		Data:       data,
		Pagination: &pagination,
	})
}

func (co *Controller) GetAttribution(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		s := httputil.ErrInvalidUUID.Error()
		c.JSON(status(httputil.ErrInvalidUUID), AttributionResponse{Error: &s})
		return
	}

	attribution, err := co.ledger.Get(familyID(c), uri.ID.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AttributionResponse{Error: &s})
		return
	}

	data := newAttribution(c, attribution)
	c.JSON(http.StatusOK, AttributionResponse{Data: &data})
}

func (co *Controller) DeleteAttribution(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		s := httputil.ErrInvalidUUID.Error()
		c.JSON(status(httputil.ErrInvalidUUID), AttributionResponse{Error: &s})
		return
	}

	err := co.ledger.Delete(familyID(c), uri.ID.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AttributionResponse{Error: &s})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
