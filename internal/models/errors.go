package models

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error wraps exactly one of these so that
// callers can classify a rejection with errors.Is without knowing the
// specific error.
var (
	ErrGeneral     = errors.New("an error occurred on the server during your request")
	ErrNotFound    = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvariant   = errors.New("invariant violation")
	ErrConflict    = errors.New("conflict")
	ErrConcurrency = errors.New("concurrent modification")
)

var (
	ErrPaymentNotFound     = fmt.Errorf("%w: there is no payment matching your query", ErrNotFound)
	ErrIncomeEventNotFound = fmt.Errorf("%w: there is no income event matching your query", ErrNotFound)
	ErrAttributionNotFound = fmt.Errorf("%w: there is no attribution matching your query", ErrNotFound)
	ErrTemplateNotFound    = fmt.Errorf("%w: there is no budget template matching your query", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("%w: there is no budget category matching your query", ErrNotFound)
)

var (
	ErrAmountNotPositive    = fmt.Errorf("%w: amounts must be larger than zero", ErrInvalidInput)
	ErrFrequencyInvalid     = fmt.Errorf("%w: the recurrence frequency is not valid", ErrInvalidInput)
	ErrPaymentKindInvalid   = fmt.Errorf("%w: the payment kind is not valid", ErrInvalidInput)
	ErrStatusInvalid        = fmt.Errorf("%w: the status is not valid", ErrInvalidInput)
	ErrPercentageOutOfRange = fmt.Errorf("%w: allocation percentages must be between 0 and 100", ErrInvalidInput)
	ErrDateRangeInvalid     = fmt.Errorf("%w: the start of the date range must not be after its end", ErrInvalidInput)
	ErrIntervalInvalid      = fmt.Errorf("%w: the grouping interval is not valid", ErrInvalidInput)
)

var (
	ErrAttributionExceedsPayment = fmt.Errorf("%w: the attributed amount would exceed the payment's effective amount", ErrInvariant)
	ErrAttributionExceedsIncome  = fmt.Errorf("%w: the attributed amount would exceed the income event's effective amount", ErrInvariant)
	ErrIncomeEventCancelled      = fmt.Errorf("%w: a cancelled income event can not hold attributions", ErrInvariant)
	ErrPaymentCancelled          = fmt.Errorf("%w: a cancelled payment can not hold attributions", ErrInvariant)
	ErrTemplatePercentageSum     = fmt.Errorf("%w: the allocation percentages of a template must not sum to more than 100", ErrInvariant)
	ErrTemplateCategoryGone      = fmt.Errorf("%w: the template references a deleted or archived budget category", ErrInvariant)
)

var (
	ErrPaymentHasAttributions     = fmt.Errorf("%w: the payment still has active attributions", ErrConflict)
	ErrIncomeEventHasAttributions = fmt.Errorf("%w: the income event still has active attributions", ErrConflict)
	ErrNotReceivable              = fmt.Errorf("%w: only scheduled income events can be marked as received", ErrConflict)
	ErrNotPayable                 = fmt.Errorf("%w: the payment has already been settled or cancelled", ErrConflict)
)

// ErrLockTimeout is the only error callers should retry automatically.
var ErrLockTimeout = fmt.Errorf("%w: the resource is locked by another request, try again", ErrConcurrency)
