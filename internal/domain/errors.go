package domain

import "errors"

// Domain errors
var (
	// Event errors
	ErrEventNotFound       = errors.New("event not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrInvalidEventTitle   = errors.New("event title is required")
	ErrInvalidEventDate    = errors.New("event date is required")
	ErrInvalidSlotKey      = errors.New("invalid slot key")
	ErrInvalidSlotDuration = errors.New("slot duration cannot be negative")

	// Vehicle errors
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrInvalidVehicleName = errors.New("vehicle name is required")

	// Crew errors
	ErrCrewNotFound = errors.New("crew member not found")

	// Hire errors
	ErrHireItemNotFound     = errors.New("hire item not found")
	ErrHireOrderNotFound    = errors.New("hire order not found")
	ErrInsufficientStock    = errors.New("insufficient stock available")
	ErrReturnAlreadyDone    = errors.New("return already verified")
	ErrInvalidStockLevel    = errors.New("stock level cannot be negative")

	// Validation errors
	ErrInvalidTenantID  = errors.New("invalid tenant id")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidWeekStart = errors.New("invalid week start date")
	ErrInvalidSortMode  = errors.New("invalid sort mode")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrVehicleNotFound) ||
		errors.Is(err, ErrCrewNotFound) ||
		errors.Is(err, ErrHireItemNotFound) ||
		errors.Is(err, ErrHireOrderNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidTenantID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidWeekStart) ||
		errors.Is(err, ErrInvalidSortMode) ||
		errors.Is(err, ErrInvalidEventTitle) ||
		errors.Is(err, ErrInvalidEventDate) ||
		errors.Is(err, ErrInvalidSlotKey) ||
		errors.Is(err, ErrInvalidSlotDuration) ||
		errors.Is(err, ErrInvalidVehicleName) ||
		errors.Is(err, ErrInvalidStockLevel)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrReturnAlreadyDone)
}
