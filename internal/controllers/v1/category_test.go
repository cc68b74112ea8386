package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	v1 "github.com/paycheckplan/backend/internal/controllers/v1"
	"github.com/paycheckplan/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestCategoriesCreate() {
	t := suite.T()

	r := suite.request(t, http.MethodPost, "http://example.com/v1/categories", []v1.CategoryEditable{
		{Name: "Housing", Note: "Rent and utilities"},
	})
	test.AssertHTTPStatus(t, &r, http.StatusCreated)

	var response v1.CategoryCreateResponse
	test.DecodeResponse(t, &r, &response)
	require.Len(t, response.Data, 1)
	require.Nil(t, response.Data[0].Error)
	assert.Equal(t, "Housing", response.Data[0].Data.Name)
	assert.False(t, response.Data[0].Data.Archived)
}

// TestCategoriesCreateDuplicateName verifies that category names are unique
// within a family but not across families.
func (suite *TestSuiteStandard) TestCategoriesCreateDuplicateName() {
	t := suite.T()

	_ = suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})
	_ = suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"}, http.StatusConflict)

	otherFamily := map[string]string{"X-Family-ID": uuid.NewString()}
	r := test.Request(t, suite.router, http.MethodPost, "http://example.com/v1/categories", []v1.CategoryEditable{{Name: "Housing"}}, otherFamily)
	test.AssertHTTPStatus(t, &r, http.StatusCreated)
}

func (suite *TestSuiteStandard) TestCategoriesGetFilter() {
	t := suite.T()

	_ = suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})
	_ = suite.createTestCategory(t, v1.CategoryEditable{Name: "Household goods"})
	_ = suite.createTestCategory(t, v1.CategoryEditable{Name: "Savings", Archived: true})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"No filter", "", 3},
		{"Name glob", "name=Hous*", 2},
		{"Name glob single match", "name=House*", 1},
		{"Archived", "archived=true", 1},
		{"Not archived", "archived=false", 2},
		{"Limit", "limit=2", 2},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/categories?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.CategoryListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesGetSingle() {
	c := suite.createTestCategory(suite.T(), v1.CategoryEditable{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing category", c.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET No category with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(t, tt.method, fmt.Sprintf("http://example.com/v1/categories/%s", tt.id), "")

			var response v1.CategoryResponse
			test.DecodeResponse(t, &r, &response)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesUpdate() {
	t := suite.T()

	c := suite.createTestCategory(t, v1.CategoryEditable{Name: "Housing"})

	r := suite.request(t, http.MethodPatch, c.Data.Links.Self, map[string]any{
		"archived": true,
	})
	test.AssertHTTPStatus(t, &r, http.StatusOK)

	r = suite.request(t, http.MethodGet, c.Data.Links.Self, "")
	var response v1.CategoryResponse
	test.DecodeResponse(t, &r, &response)
	assert.True(t, response.Data.Archived)
	assert.Equal(t, "Housing", response.Data.Name, "Fields not in the request body must not change")
}

func (suite *TestSuiteStandard) TestCategoriesDelete() {
	t := suite.T()

	c := suite.createTestCategory(t, v1.CategoryEditable{})

	r := suite.request(t, http.MethodDelete, c.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusNoContent)

	r = suite.request(t, http.MethodDelete, c.Data.Links.Self, "")
	test.AssertHTTPStatus(t, &r, http.StatusNotFound)
}
