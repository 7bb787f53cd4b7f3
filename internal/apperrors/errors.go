package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is in a state that forbids the requested change.
var ErrConflict = errors.New("resource state conflict")

// ErrForbidden indicates the caller is not allowed to perform the action.
var ErrForbidden = errors.New("action forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Settlement-specific errors.
var (
	// ErrInvalidAmount indicates a non-positive amount was supplied to a ledger operation.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrWalletNotFound indicates no wallet exists for the given owner.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientBalance indicates a debit would take the wallet balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientHoldings indicates the holder owns fewer credits of the lot than requested.
	ErrInsufficientHoldings = errors.New("insufficient carbon holdings")

	// ErrListingUnavailable indicates the listing is not OPEN and cannot be reserved.
	ErrListingUnavailable = errors.New("listing is not available for purchase")

	// ErrSelfTradeForbidden indicates a buyer attempted to purchase their own listing.
	ErrSelfTradeForbidden = errors.New("buyer cannot purchase their own listing")

	// ErrInvalidState indicates a lifecycle transition was attempted from the wrong state.
	ErrInvalidState = errors.New("invalid lifecycle state for operation")

	// ErrDuplicateDispute indicates the trade already has an active dispute.
	ErrDuplicateDispute = errors.New("trade already has an active dispute")

	// ErrTransactionNotFound indicates no ledger transaction matches the given reference.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSignatureInvalid indicates a gateway payload failed signature verification.
	ErrSignatureInvalid = errors.New("gateway signature invalid")

	// ErrAmountMismatch indicates the callback amount differs from the recorded amount.
	ErrAmountMismatch = errors.New("callback amount does not match transaction amount")

	// ErrConcurrentModification indicates an optimistic version check failed.
	// Transient: callers may retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// AppError wraps a lower-level error with a status-like code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError carrying ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
