package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/shopspring/decimal"
)

// IncomeEventEditable represents all user configurable parameters
type IncomeEventEditable struct {
	Name      string               `json:"name" example:"Paycheck" default:""`              // Name of the income event
	Note      string               `json:"note" example:"Main job, paid monthly" default:""` // Notes about the income event
	Amount    decimal.Decimal      `json:"amount" example:"3000.00"`                        // The expected amount
	Date      types.Date           `json:"date" example:"2024-06-01"`                       // Expected date, also the recurrence anchor
	Frequency recurrence.Frequency `json:"frequency" example:"monthly" default:"once"`      // How the income repeats
}

func (editable IncomeEventEditable) model(familyID uuid.UUID) models.IncomeEvent {
	return models.IncomeEvent{
		FamilyID:  familyID,
		Name:      editable.Name,
		Note:      editable.Note,
		Amount:    editable.Amount,
		Date:      editable.Date,
		Frequency: editable.Frequency,
	}
}

type IncomeEventLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/income-events/3b1ea324-d438-4419-882a-2fc91d71772f"`                      // The income event itself
	Attributions string `json:"attributions" example:"https://example.com/api/v1/attributions?incomeEvent=3b1ea324-d438-4419-882a-2fc91d71772f"`  // Attributions funded by this income event
	Occurrences  string `json:"occurrences" example:"https://example.com/api/v1/income-events/3b1ea324-d438-4419-882a-2fc91d71772f/occurrences"` // Recurrence preview
}

type IncomeEvent struct {
	models.IncomeEvent
	Links IncomeEventLinks `json:"links"`

	// These fields are computed
	EffectiveAmount decimal.Decimal `json:"effectiveAmount"` // Actual amount if received, else the expected amount
	RemainingAmount decimal.Decimal `json:"remainingAmount"` // Effective amount minus the allocated amount
}

func newIncomeEvent(c *gin.Context, model models.IncomeEvent) IncomeEvent {
	url := httputil.RequestPathV1(c)

	return IncomeEvent{
		IncomeEvent: model,
		Links: IncomeEventLinks{
			Self:         fmt.Sprintf("%s/income-events/%s", url, model.ID),
			Attributions: fmt.Sprintf("%s/attributions?incomeEvent=%s", url, model.ID),
			Occurrences:  fmt.Sprintf("%s/income-events/%s/occurrences", url, model.ID),
		},
		EffectiveAmount: model.EffectiveAmount(),
		RemainingAmount: model.RemainingAmount(),
	}
}

type IncomeEventListResponse struct {
	Data       []IncomeEvent `json:"data"`       // List of income events
	Error      *string       `json:"error"`      // The error, if any occurred
	Pagination *Pagination   `json:"pagination"` // Pagination information
}

type IncomeEventCreateResponse struct {
	Data  []IncomeEventResponse `json:"data"`  // List of the created income events or their respective error
	Error *string               `json:"error"` // The error, if any occurred
}

func (r *IncomeEventCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, IncomeEventResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type IncomeEventResponse struct {
	Data  *IncomeEvent `json:"data"`  // Data for the income event
	Error *string      `json:"error"` // The error, if any occurred
}

type IncomeEventQueryFilter struct {
	Name      string                    `form:"name" filterField:"false"`   // By name, supports * as wildcard
	Note      string                    `form:"note" filterField:"false"`   // By note, supports * as wildcard
	Status    models.IncomeEventStatus  `form:"status"`                     // By status
	Frequency recurrence.Frequency      `form:"frequency"`                  // By recurrence frequency
	From      types.Date                `form:"from" filterField:"false"`   // Events dated on or after this date
	To        types.Date                `form:"to" filterField:"false"`     // Events dated on or before this date
	Offset    uint                      `form:"offset" filterField:"false"` // The offset of the first income event returned. Defaults to 0.
	Limit     int                       `form:"limit" filterField:"false"`  // Maximum number of income events to return. Defaults to 50.
}

func (f IncomeEventQueryFilter) model() models.IncomeEvent {
	return models.IncomeEvent{
		Status:    f.Status,
		Frequency: f.Frequency,
	}
}

// SettleRequest is the body for the settlement endpoints. Both fields are
// optional, the nominal amount and the current day are used when unset.
type SettleRequest struct {
	Amount decimal.NullDecimal `json:"amount" example:"3075.20"` // The actual amount
	Date   *types.Date         `json:"date" example:"2024-06-03"` // The actual date
}

// OccurrenceQuery bounds a recurrence preview.
type OccurrenceQuery struct {
	Until types.Date `form:"until" example:"2025-06-01"` // Expand occurrences strictly before this date. Defaults to one year after the anchor.
}

type OccurrencesResponse struct {
	Data  []types.Date `json:"data"`  // The expanded occurrence dates
	Error *string      `json:"error"` // The error, if any occurred
}
