package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	pp_uuid "github.com/paycheckplan/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

// PaymentEditable represents all user configurable parameters
type PaymentEditable struct {
	Payee      string               `json:"payee" example:"Hyperloop Utilities" default:""`      // Who is paid
	Note       string               `json:"note" example:"Electricity, usage based" default:""`  // Notes about the payment
	Amount     decimal.Decimal      `json:"amount" example:"120.00"`                             // The nominal amount
	DueDate    types.Date           `json:"dueDate" example:"2024-06-15"`                        // Due date, also the recurrence anchor
	Kind       models.PaymentKind   `json:"kind" example:"recurring" default:"once"`             // How the payment repeats
	Frequency  recurrence.Frequency `json:"frequency" example:"monthly" default:"once"`          // The recurrence frequency
	CategoryID *uuid.UUID           `json:"categoryId" example:"52d967d3-33f4-4b04-9ba7-772e5ab9d0ce"` // ID of the spending category, optional
}

func (editable PaymentEditable) model(familyID uuid.UUID) models.Payment {
	return models.Payment{
		FamilyID:   familyID,
		Payee:      editable.Payee,
		Note:       editable.Note,
		Amount:     editable.Amount,
		DueDate:    editable.DueDate,
		Kind:       editable.Kind,
		Frequency:  editable.Frequency,
		CategoryID: editable.CategoryID,
	}
}

type PaymentLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/payments/3b1ea324-d438-4419-882a-2fc91d71772f"`                     // The payment itself
	Attributions string `json:"attributions" example:"https://example.com/api/v1/attributions?payment=3b1ea324-d438-4419-882a-2fc91d71772f"` // Attributions funding this payment
	Occurrences  string `json:"occurrences" example:"https://example.com/api/v1/payments/3b1ea324-d438-4419-882a-2fc91d71772f/occurrences"`  // Recurrence preview
}

type Payment struct {
	models.Payment
	Links PaymentLinks `json:"links"`

	// These fields are computed
	EffectiveAmount decimal.Decimal `json:"effectiveAmount"` // Paid amount if settled, else the nominal amount
	RemainingAmount decimal.Decimal `json:"remainingAmount"` // Effective amount minus the attributed amount
}

func newPayment(c *gin.Context, model models.Payment) Payment {
	url := httputil.RequestPathV1(c)

	// Overdue is derived against the current day on every read, it is not
	// persisted here
	model.RefreshStatus(types.DateOf(time.Now()))

	return Payment{
		Payment: model,
		Links: PaymentLinks{
			Self:         fmt.Sprintf("%s/payments/%s", url, model.ID),
			Attributions: fmt.Sprintf("%s/attributions?payment=%s", url, model.ID),
			Occurrences:  fmt.Sprintf("%s/payments/%s/occurrences", url, model.ID),
		},
		EffectiveAmount: model.EffectiveAmount(),
		RemainingAmount: model.RemainingAmount(),
	}
}

type PaymentListResponse struct {
	Data       []Payment   `json:"data"`       // List of payments
	Error      *string     `json:"error"`      // The error, if any occurred
	Pagination *Pagination `json:"pagination"` // Pagination information
}

type PaymentCreateResponse struct {
	Data  []PaymentResponse `json:"data"`  // List of the created payments or their respective error
	Error *string           `json:"error"` // The error, if any occurred
}

func (r *PaymentCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, PaymentResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type PaymentResponse struct {
	Data  *Payment `json:"data"`  // Data for the payment
	Error *string  `json:"error"` // The error, if any occurred
}

type PaymentQueryFilter struct {
	Payee      string               `form:"payee" filterField:"false"`    // By payee, supports * as wildcard
	Note       string               `form:"note" filterField:"false"`     // By note, supports * as wildcard
	Status     models.PaymentStatus `form:"status" filterField:"false"`   // By status, derived against the current day
	Kind       models.PaymentKind   `form:"kind"`                         // By payment kind
	CategoryID pp_uuid.UUID         `form:"category"`                     // By ID of the spending category
	From       types.Date           `form:"from" filterField:"false"`     // Payments due on or after this date
	To         types.Date           `form:"to" filterField:"false"`       // Payments due on or before this date
	Offset     uint                 `form:"offset" filterField:"false"`   // The offset of the first payment returned. Defaults to 0.
	Limit      int                  `form:"limit" filterField:"false"`    // Maximum number of payments to return. Defaults to 50.
}

func (f PaymentQueryFilter) model() models.Payment {
	var categoryID *uuid.UUID
	if f.CategoryID != pp_uuid.Nil {
		categoryID = &f.CategoryID.UUID
	}

	return models.Payment{
		Kind:       f.Kind,
		CategoryID: categoryID,
	}
}
