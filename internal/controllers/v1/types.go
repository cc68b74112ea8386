package v1

import (
	"github.com/paycheckplan/backend/internal/types"
	pp_uuid "github.com/paycheckplan/backend/internal/uuid"
)

type URIID struct {
	ID pp_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type URIMonth struct {
	Month types.Month `uri:"month" binding:"required" example:"2024-06"` // Year and month in YYYY-MM format
}

type URIYear struct {
	Year int `uri:"year" binding:"required" example:"2024"`
}

type Pagination struct {
	Count  int   `json:"count"`  // The amount of records returned in this response
	Offset uint  `json:"offset"` // The offset for the first record returned
	Limit  int   `json:"limit"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total"`  // The total number of resources matching the query
}
