package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/paycheckplan/backend/internal/controllers/v1"
	"github.com/paycheckplan/backend/internal/recurrence"
	"github.com/paycheckplan/backend/internal/types"
	"github.com/paycheckplan/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedReportData creates one received income event and one paid payment in
// June 2024.
func (suite *TestSuiteStandard) seedReportData(t *testing.T) {
	e := suite.createTestIncomeEvent(t, v1.IncomeEventEditable{
		Name:   "Paycheck",
		Amount: decimal.NewFromFloat(3000),
		Date:   types.NewDate(2024, 6, 1),
	})
	r := suite.request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/income-events/%s/received", e.Data.ID), map[string]any{
		"date": "2024-06-01",
	})
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	p := suite.createTestPayment(t, v1.PaymentEditable{
		Payee:   "Landlord",
		Amount:  decimal.NewFromFloat(1200),
		DueDate: types.NewDate(2024, 6, 5),
	})
	r = suite.request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/payments/%s/paid", p.Data.ID), map[string]any{
		"date": "2024-06-05",
	})
	test.AssertHTTPStatus(t, &r, http.StatusOK)
}

func (suite *TestSuiteStandard) TestReportCashFlow() {
	t := suite.T()
	suite.seedReportData(t)

	r := suite.request(t, http.MethodGet, "http://example.com/v1/reports/cashflow?from=2024-06-01&to=2024-06-30", "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.CashFlowReportResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)
	require.Len(t, response.Data.Buckets, 1)

	bucket := response.Data.Buckets[0]
	assert.True(t, bucket.Income.Equal(decimal.NewFromFloat(3000)), "Income is %s", bucket.Income)
	assert.True(t, bucket.Expenses.Equal(decimal.NewFromFloat(1200)), "Expenses is %s", bucket.Expenses)
	assert.True(t, bucket.NetFlow.Equal(decimal.NewFromFloat(1800)), "Net flow is %s", bucket.NetFlow)
	assert.False(t, bucket.Projected)
}

func (suite *TestSuiteStandard) TestReportCashFlowErrors() {
	tests := []struct {
		name  string
		query string
	}{
		{"Inverted range", "from=2024-06-30&to=2024-06-01"},
		{"Invalid interval", "from=2024-06-01&to=2024-06-30&groupBy=decade"},
		{"Unparseable date", "from=notadate&to=2024-06-30"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/reports/cashflow?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestReportMonthlySummary() {
	t := suite.T()
	suite.seedReportData(t)

	r := suite.request(t, http.MethodGet, "http://example.com/v1/reports/summary/monthly/2024-06", "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.MonthlySummaryResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)
	assert.True(t, response.Data.Income.Equal(decimal.NewFromFloat(3000)))
	assert.True(t, response.Data.Expenses.Equal(decimal.NewFromFloat(1200)))

	// Unparseable month
	r = suite.request(t, http.MethodGet, "http://example.com/v1/reports/summary/monthly/June", "")
	test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestReportAnnualSummary() {
	t := suite.T()
	suite.seedReportData(t)

	r := suite.request(t, http.MethodGet, "http://example.com/v1/reports/summary/annual/2024", "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.AnnualSummaryResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)
	assert.True(t, response.Data.Income.Equal(decimal.NewFromFloat(3000)))
	require.Len(t, response.Data.Months, 12)
}

func (suite *TestSuiteStandard) TestReportSavingsRate() {
	t := suite.T()
	suite.seedReportData(t)

	r := suite.request(t, http.MethodGet, "http://example.com/v1/reports/savings-rate?from=2024-06-01&to=2024-06-30", "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.SavingsRateReportResponse
	test.DecodeResponse(t, &r, &response)
	require.Len(t, response.Data, 1)
	assert.True(t, response.Data[0].SavingsRate.Equal(decimal.NewFromFloat(60)), "Savings rate is %s", response.Data[0].SavingsRate)
}

func (suite *TestSuiteStandard) TestReportNetWorth() {
	t := suite.T()
	suite.seedReportData(t)

	r := suite.request(t, http.MethodGet, "http://example.com/v1/reports/net-worth?from=2024-06-01&to=2024-06-30&openingBalance=10000", "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.NetWorthReportResponse
	test.DecodeResponse(t, &r, &response)
	require.Len(t, response.Data, 1)
	assert.True(t, response.Data[0].NetWorth.Equal(decimal.NewFromFloat(11800)), "Net worth is %s", response.Data[0].NetWorth)
}

func (suite *TestSuiteStandard) TestReportBudgetOverview() {
	t := suite.T()
	suite.seedReportData(t)

	tpl := suite.createTestTemplate(t, v1.TemplateEditable{})
	housing := suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})
	_ = suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: housing.Data.ID,
		Percentage: decimal.NewFromFloat(50),
	})

	r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/reports/budget/overview?template=%s&month=2024-06", tpl.Data.ID), "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.BudgetOverviewResponse
	test.DecodeResponse(t, &r, &response)
	require.NotNil(t, response.Data)
	require.Len(t, response.Data.Categories, 1)
	assert.True(t, response.Data.Categories[0].Allocated.Equal(decimal.NewFromFloat(1500)), "Allocated is %s", response.Data.Categories[0].Allocated)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"Template is required", "month=2024-06", http.StatusBadRequest},
		{"Unknown template", fmt.Sprintf("template=%s&month=2024-06", uuid.New()), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/reports/budget/overview?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestReportBudgetProjection() {
	t := suite.T()

	_ = suite.createTestIncomeEvent(t, v1.IncomeEventEditable{
		Name:      "Paycheck",
		Amount:    decimal.NewFromFloat(3000),
		Date:      types.NewDate(2024, 6, 1),
		Frequency: recurrence.Monthly,
	})

	tpl := suite.createTestTemplate(t, v1.TemplateEditable{})
	savings := suite.createTestCategory(t, v1.CategoryEditable{Name: "Savings"})
	_ = suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: savings.Data.ID,
		Percentage: decimal.NewFromFloat(20),
	})

	r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/reports/budget/projection?template=%s&from=2024-07&months=3", tpl.Data.ID), "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.BudgetProjectionResponse
	test.DecodeResponse(t, &r, &response)
	require.Len(t, response.Data, 3)

	first := response.Data[0]
	assert.True(t, first.ProjectedIncome.Equal(decimal.NewFromFloat(3000)), "Projected income is %s", first.ProjectedIncome)
	require.Len(t, first.Targets, 1)
	assert.True(t, first.Targets[0].TargetAmount.Equal(decimal.NewFromFloat(600)), "Target is %s", first.Targets[0].TargetAmount)

	r = suite.request(t, http.MethodGet, "http://example.com/v1/reports/budget/projection?months=3", "")
	test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestHealthz() {
	t := suite.T()

	// The health endpoint needs no family scope
	r := test.Request(t, suite.router, http.MethodGet, "http://example.com/healthz", "")
	test.AssertHTTPStatus(t, &r, http.StatusNoContent)

	r = test.Request(t, suite.router, http.MethodOptions, "http://example.com/healthz", "")
	test.AssertHTTPStatus(t, &r, http.StatusNoContent)

	suite.CloseDB()
	r = test.Request(t, suite.router, http.MethodGet, "http://example.com/healthz", "")
	test.AssertHTTPStatus(t, &r, http.StatusInternalServerError)
}
