package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/paycheckplan/backend/internal/controllers/v1"
	"github.com/paycheckplan/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestTemplatesCreate() {
	t := suite.T()

	r := suite.request(t, http.MethodPost, "http://example.com/v1/templates", []v1.TemplateEditable{
		{Name: "50/30/20", Note: "Needs, wants, savings split"},
	})
	test.AssertHTTPStatus(t, &r, http.StatusCreated)

	var response v1.TemplateCreateResponse
	test.DecodeResponse(t, &r, &response)
	require.Len(t, response.Data, 1)
	require.Nil(t, response.Data[0].Error)
	assert.Equal(t, "50/30/20", response.Data[0].Data.Name)
}

func (suite *TestSuiteStandard) TestTemplatesGetSingle() {
	tpl := suite.createTestTemplate(suite.T(), v1.TemplateEditable{})

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing template", tpl.Data.ID.String(), http.StatusOK},
		{"No template with this ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/templates/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestTemplatesAllocations verifies allocation creation through the
// template and the percentage sum guard.
func (suite *TestSuiteStandard) TestTemplatesAllocations() {
	t := suite.T()

	tpl := suite.createTestTemplate(t, v1.TemplateEditable{})
	housing := suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})
	savings := suite.createTestCategory(t, v1.CategoryEditable{Name: "Savings"})

	_ = suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: housing.Data.ID,
		Percentage: decimal.NewFromFloat(50),
	})
	_ = suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: savings.Data.ID,
		Percentage: decimal.NewFromFloat(20),
	})

	// The allocations are returned with the template
	r := suite.request(t, http.MethodGet, tpl.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.TemplateResponse
	test.DecodeResponse(t, &r, &response)
	assert.Len(t, response.Data.Allocations, 2)
}

func (suite *TestSuiteStandard) TestTemplatesAllocationErrors() {
	t := suite.T()

	tpl := suite.createTestTemplate(t, v1.TemplateEditable{})
	housing := suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})
	savings := suite.createTestCategory(t, v1.CategoryEditable{Name: "Savings"})

	_ = suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: housing.Data.ID,
		Percentage: decimal.NewFromFloat(60),
	})

	tests := []struct {
		name      string
		editable  v1.AllocationEditable
		status    int
	}{
		{
			"Sum exceeds 100",
			v1.AllocationEditable{CategoryID: savings.Data.ID, Percentage: decimal.NewFromFloat(50)},
			http.StatusBadRequest,
		},
		{
			"Percentage out of range",
			v1.AllocationEditable{CategoryID: savings.Data.ID, Percentage: decimal.NewFromFloat(-5)},
			http.StatusBadRequest,
		},
		{
			"Unknown category",
			v1.AllocationEditable{CategoryID: uuid.New(), Percentage: decimal.NewFromFloat(10)},
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			_ = suite.createTestAllocation(t, tpl.Data.ID, tt.editable, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsUpdateDelete() {
	t := suite.T()

	tpl := suite.createTestTemplate(t, v1.TemplateEditable{})
	housing := suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})

	allocation := suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: housing.Data.ID,
		Percentage: decimal.NewFromFloat(50),
	})

	r := suite.request(t, http.MethodPatch, allocation.Data.Links.Self, map[string]any{
		"percentage": "35",
	})
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	r = suite.request(t, http.MethodGet, allocation.Data.Links.Self, "")
	var response v1.AllocationResponse
	test.DecodeResponse(t, &r, &response)
	assert.True(t, response.Data.Percentage.Equal(decimal.NewFromFloat(35)), "Percentage is %s", response.Data.Percentage)

	r = suite.request(t, http.MethodDelete, allocation.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusNoContent)

	r = suite.request(t, http.MethodGet, allocation.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusNotFound)
}

// TestTemplatesDelete verifies that allocations are deleted with their
// template.
func (suite *TestSuiteStandard) TestTemplatesDelete() {
	t := suite.T()

	tpl := suite.createTestTemplate(t, v1.TemplateEditable{})
	housing := suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})

	allocation := suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: housing.Data.ID,
		Percentage: decimal.NewFromFloat(50),
	})

	r := suite.request(t, http.MethodDelete, tpl.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusNoContent)

	r = suite.request(t, http.MethodGet, allocation.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTemplateResolve() {
	t := suite.T()

	tpl := suite.createTestTemplate(t, v1.TemplateEditable{})
	housing := suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})
	savings := suite.createTestCategory(t, v1.CategoryEditable{Name: "Savings"})

	_ = suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: housing.Data.ID,
		Percentage: decimal.NewFromFloat(50),
	})
	_ = suite.createTestAllocation(t, tpl.Data.ID, v1.AllocationEditable{
		CategoryID: savings.Data.ID,
		Percentage: decimal.NewFromFloat(20),
	})

	r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/templates/%s/resolve?income=4000", tpl.Data.ID), "")
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	var response v1.ResolveResponse
	test.DecodeResponse(t, &r, &response)
	require.Len(t, response.Data, 2)

	targets := make(map[uuid.UUID]decimal.Decimal)
	for _, target := range response.Data {
		targets[target.CategoryID] = target.TargetAmount
	}

	assert.True(t, targets[housing.Data.ID].Equal(decimal.NewFromFloat(2000)), "Housing target is %s", targets[housing.Data.ID])
	assert.True(t, targets[savings.Data.ID].Equal(decimal.NewFromFloat(800)), "Savings target is %s", targets[savings.Data.ID])

	// The income parameter is required
	r = suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/templates/%s/resolve", tpl.Data.ID), "")
	test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
}
