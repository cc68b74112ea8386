package v1

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	sqlite "github.com/glebarez/go-sqlite"
	"github.com/paycheckplan/backend/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type httpError struct {
	Error string `json:"error" example:"there is no payment matching the ID you specified"`
}

// status returns the appropriate HTTP status for a domain or database error.
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrConcurrency):
		// Lock timeouts are transient, the caller should retry
		return http.StatusServiceUnavailable

	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvariant):
		return http.StatusBadRequest

	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	}

	if reflect.TypeOf(err) == reflect.TypeOf(&sqlite.Error{}) {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return http.StatusConflict
		}

		if strings.Contains(err.Error(), "constraint failed") {
			return http.StatusBadRequest
		}

		log.Error().Msgf("%T: %v", err, err.Error())
		return http.StatusInternalServerError
	}

	// Everything else is an unexpected server error, e.g. a closed database
	log.Error().Msgf("%T: %v", err, err.Error())
	return http.StatusInternalServerError
}

var (
	errIncomeEventSettled = fmt.Errorf("%w: a received or cancelled income event can not be edited", models.ErrConflict)
	errPaymentSettled     = fmt.Errorf("%w: a paid or cancelled payment can not be edited", models.ErrConflict)
	errIncomeRequired     = fmt.Errorf("%w: the income query parameter must be a positive amount", models.ErrInvalidInput)
	errTemplateRequired   = fmt.Errorf("%w: the template query parameter must be set to a valid UUID", models.ErrInvalidInput)
)
