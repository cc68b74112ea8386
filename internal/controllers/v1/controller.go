// Package v1 contains the handlers for the v1 API. Handlers bind and
// validate request data, everything else is delegated to the domain
// packages.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paycheckplan/backend/internal/aggregate"
	"github.com/paycheckplan/backend/internal/budget"
	"github.com/paycheckplan/backend/internal/httputil"
	"github.com/paycheckplan/backend/internal/ledger"
	"github.com/paycheckplan/backend/internal/report"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// Controller holds the database and the domain engines the handlers
// delegate to.
type Controller struct {
	db         *gorm.DB
	ledger     *ledger.Ledger
	aggregator *aggregate.Aggregator
	resolver   *budget.Resolver
	composer   *report.Composer
}

// NewController wires a Controller with all engines connected to db.
func NewController(db *gorm.DB) *Controller {
	return &Controller{
		db:         db,
		ledger:     ledger.New(db),
		aggregator: aggregate.New(db),
		resolver:   budget.NewResolver(db),
		composer:   report.New(db),
	}
}

const familyContextKey = "familyID"

// FamilyMiddleware parses the X-Family-ID header into the request context.
// Requests without a valid UUID in the header are rejected.
func FamilyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-Family-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, httpError{
				Error: httputil.ErrFamilyIDMissing.Error(),
			})
			return
		}

		c.Set(familyContextKey, id)
		c.Next()
	}
}

func familyID(c *gin.Context) uuid.UUID {
	return c.MustGet(familyContextKey).(uuid.UUID)
}

// AttachRoutes attaches the handlers to the RouterGroup that is passed.
// All resource routes require the family scope from FamilyMiddleware.
func (co *Controller) AttachRoutes(group *gin.RouterGroup) {
	scoped := group.Group("", FamilyMiddleware())

	co.registerIncomeEventRoutes(scoped.Group("/income-events"))
	co.registerPaymentRoutes(scoped.Group("/payments"))
	co.registerAttributionRoutes(scoped.Group("/attributions"))
	co.registerCategoryRoutes(scoped.Group("/categories"))
	co.registerTemplateRoutes(scoped.Group("/templates"))
	co.registerAllocationRoutes(scoped.Group("/allocations"))
	co.registerReportRoutes(scoped.Group("/reports"))
}

// globFilter returns the elements of list whose value for field matches
// the pattern. The pattern supports "*" as wildcard. Matching happens
// after the database query since patterns cannot be translated to SQL
// reliably.
func globFilter[T any](list []T, field func(T) string, pattern string) []T {
	if pattern == "" {
		return list
	}

	matched := make([]T, 0, len(list))
	for _, element := range list {
		if glob.Glob(pattern, field(element)) {
			matched = append(matched, element)
		}
	}

	return matched
}

// paginate applies offset and limit to an in-memory result list and
// returns the page together with the Pagination metadata.
func paginate[T any](list []T, offset uint, limit int) ([]T, Pagination) {
	total := int64(len(list))

	if int(offset) >= len(list) {
		list = []T{}
	} else {
		list = list[offset:]
	}

	if limit >= 0 && limit < len(list) {
		list = list[:limit]
	}

	return list, Pagination{
		Count:  len(list),
		Offset: offset,
		Limit:  limit,
		Total:  total,
	}
}

// defaultLimit is the number of resources a list endpoint returns when
// the limit parameter is not set.
const defaultLimit = 50

func limitOrDefault(setFields []string, limit int) int {
	for _, field := range setFields {
		if field == "Limit" {
			return limit
		}
	}

	return defaultLimit
}
