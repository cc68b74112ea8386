package httputil

import (
	"fmt"

	"github.com/paycheckplan/backend/internal/models"
)

var (
	ErrRequestBodyEmpty = fmt.Errorf("%w: the request body must not be empty", models.ErrInvalidInput)
	ErrInvalidBody      = fmt.Errorf("%w: the body of your request contains invalid or un-parseable data. Please check and try again", models.ErrInvalidInput)
	ErrInvalidUUID      = fmt.Errorf("%w: the specified resource ID is not a valid UUID", models.ErrInvalidInput)
	ErrInvalidQuery     = fmt.Errorf("%w: a parameter in the query string could not be parsed. Please check and try again", models.ErrInvalidInput)
	ErrFamilyIDMissing  = fmt.Errorf("%w: the X-Family-ID header must be set to a valid UUID", models.ErrInvalidInput)
)
