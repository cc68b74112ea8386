package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paycheckplan/backend/internal/aggregate"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/report"
	"github.com/paycheckplan/backend/internal/types"
	pp_uuid "github.com/paycheckplan/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

func (co *Controller) registerReportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/cashflow", httputil.OptionsGet)
	r.GET("/cashflow", co.GetCashFlowReport)

	r.OPTIONS("/summary/monthly/:month", httputil.OptionsGet)
	r.GET("/summary/monthly/:month", co.GetMonthlySummaryReport)

	r.OPTIONS("/summary/annual/:year", httputil.OptionsGet)
	r.GET("/summary/annual/:year", co.GetAnnualSummaryReport)

	r.OPTIONS("/savings-rate", httputil.OptionsGet)
	r.GET("/savings-rate", co.GetSavingsRateReport)

	r.OPTIONS("/net-worth", httputil.OptionsGet)
	r.GET("/net-worth", co.GetNetWorthReport)

	r.OPTIONS("/budget/overview", httputil.OptionsGet)
	r.GET("/budget/overview", co.GetBudgetOverviewReport)

	r.OPTIONS("/budget/projection", httputil.OptionsGet)
	r.GET("/budget/projection", co.GetBudgetProjectionReport)
}

// CashFlowQuery bounds the cash flow report.
type CashFlowQuery struct {
	From      types.Date         `form:"from" example:"2024-01-01"`                    // Start of the reporting range
	To        types.Date         `form:"to" example:"2024-12-31"`                      // End of the reporting range
	GroupBy   aggregate.Interval `form:"groupBy" example:"month" default:"month"`      // Bucket interval: day, week, month, quarter or year
	ProjectTo types.Date         `form:"projectTo" example:"2025-06-30"`               // Extend the report with recurrence forecast buckets up to this date
}

type CashFlowReportResponse struct {
	Data  *report.CashFlowReport `json:"data"`  // The cash flow report
	Error *string                `json:"error"` // The error, if any occurred
}

func (co *Controller) GetCashFlowReport(c *gin.Context) {
	var query CashFlowQuery
	if err := c.ShouldBind(&query); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), CashFlowReportResponse{Error: &s})
		return
	}

	if query.GroupBy == "" {
		query.GroupBy = aggregate.Month
	}

	cashFlow, err := co.composer.CashFlow(familyID(c), query.From, query.To, query.GroupBy, query.ProjectTo)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CashFlowReportResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, CashFlowReportResponse{Data: &cashFlow})
}

type MonthlySummaryResponse struct {
	Data  *report.MonthSummary `json:"data"`  // The monthly summary
	Error *string              `json:"error"` // The error, if any occurred
}

func (co *Controller) GetMonthlySummaryReport(c *gin.Context) {
	var uri URIMonth
	if err := c.ShouldBindUri(&uri); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), MonthlySummaryResponse{Error: &s})
		return
	}

	summary, err := co.composer.MonthlySummary(familyID(c), uri.Month)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), MonthlySummaryResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, MonthlySummaryResponse{Data: &summary})
}

type AnnualSummaryResponse struct {
	Data  *report.AnnualSummary `json:"data"`  // The annual summary
	Error *string               `json:"error"` // The error, if any occurred
}

func (co *Controller) GetAnnualSummaryReport(c *gin.Context) {
	var uri URIYear
	if err := c.ShouldBindUri(&uri); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), AnnualSummaryResponse{Error: &s})
		return
	}

	summary, err := co.composer.Annual(familyID(c), uri.Year)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AnnualSummaryResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, AnnualSummaryResponse{Data: &summary})
}

// RangeQuery is a plain from/to range.
type RangeQuery struct {
	From types.Date `form:"from" example:"2024-01-01"` // Start of the reporting range
	To   types.Date `form:"to" example:"2024-12-31"`   // End of the reporting range
}

type SavingsRateReportResponse struct {
	Data  []report.SavingsRatePoint `json:"data"`  // The monthly savings rate series
	Error *string                   `json:"error"` // The error, if any occurred
}

func (co *Controller) GetSavingsRateReport(c *gin.Context) {
	var query RangeQuery
	if err := c.ShouldBind(&query); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), SavingsRateReportResponse{Error: &s})
		return
	}

	points, err := co.composer.SavingsRate(familyID(c), query.From, query.To)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SavingsRateReportResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, SavingsRateReportResponse{Data: points})
}

// NetWorthQuery bounds the net worth report.
type NetWorthQuery struct {
	From           types.Date         `form:"from" example:"2024-01-01"`               // Start of the reporting range
	To             types.Date         `form:"to" example:"2024-12-31"`                 // End of the reporting range
	GroupBy        aggregate.Interval `form:"groupBy" example:"month" default:"month"` // Bucket interval: day, week, month, quarter or year
	OpeningBalance decimal.Decimal    `form:"openingBalance" example:"10000.00"`       // The balance at the start of the range. Defaults to 0.
}

type NetWorthReportResponse struct {
	Data  []report.NetWorthPoint `json:"data"`  // The balance trajectory
	Error *string                `json:"error"` // The error, if any occurred
}

func (co *Controller) GetNetWorthReport(c *gin.Context) {
	var query NetWorthQuery
	if err := c.ShouldBind(&query); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), NetWorthReportResponse{Error: &s})
		return
	}

	if query.GroupBy == "" {
		query.GroupBy = aggregate.Month
	}

	points, err := co.composer.NetWorth(familyID(c), query.From, query.To, query.GroupBy, query.OpeningBalance)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), NetWorthReportResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, NetWorthReportResponse{Data: points})
}

// BudgetOverviewQuery selects the template and month for the overview.
type BudgetOverviewQuery struct {
	Template pp_uuid.UUID    `form:"template"`                 // ID of the budget template
	Month    types.Month     `form:"month" example:"2024-06"`  // The month to report on
	Income   decimal.Decimal `form:"income" example:"4000.00"` // Override the income the template is resolved against. Defaults to the month's actual income.
}

type BudgetOverviewResponse struct {
	Data  *report.BudgetOverview `json:"data"`  // The budget overview
	Error *string                `json:"error"` // The error, if any occurred
}

func (co *Controller) GetBudgetOverviewReport(c *gin.Context) {
	var query BudgetOverviewQuery
	if err := c.ShouldBind(&query); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), BudgetOverviewResponse{Error: &s})
		return
	}

	// An empty parameter binds to the Nil UUID, so required is checked here
	if query.Template == pp_uuid.Nil {
		s := errTemplateRequired.Error()
		c.JSON(status(errTemplateRequired), BudgetOverviewResponse{Error: &s})
		return
	}

	overview, err := co.composer.Overview(familyID(c), query.Template.UUID, query.Month, query.Income)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetOverviewResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, BudgetOverviewResponse{Data: &overview})
}

// BudgetProjectionQuery selects the template and window for the projection.
type BudgetProjectionQuery struct {
	Template pp_uuid.UUID `form:"template"`                       // ID of the budget template
	From     types.Month  `form:"from" example:"2024-07"`         // First projected month. Defaults to the current month.
	Months   int          `form:"months" example:"6" default:"6"` // How many months to project. Defaults to 6.
}

type BudgetProjectionResponse struct {
	Data  []report.BudgetProjectionMonth `json:"data"`  // The projected months
	Error *string                        `json:"error"` // The error, if any occurred
}

func (co *Controller) GetBudgetProjectionReport(c *gin.Context) {
	var query BudgetProjectionQuery
	if err := c.ShouldBind(&query); err != nil {
		s := httputil.ErrInvalidQuery.Error()
		c.JSON(status(httputil.ErrInvalidQuery), BudgetProjectionResponse{Error: &s})
		return
	}

	if query.Template == pp_uuid.Nil {
		s := errTemplateRequired.Error()
		c.JSON(status(errTemplateRequired), BudgetProjectionResponse{Error: &s})
		return
	}

	if query.From.IsZero() {
		query.From = types.MonthOf(time.Now())
	}

	if query.Months <= 0 {
		query.Months = 6
	}

	projection, err := co.composer.Projection(familyID(c), query.Template.UUID, query.From, query.Months)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetProjectionResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, BudgetProjectionResponse{Data: projection})
}
