package shared

import (
	"fmt"
)

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so that
// errors.Is(err, shared.ErrInsufficientStock) matches detailed variants.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errorf builds a domain error with a formatted message.
func Errorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes
const (
	CodeNotFound                  = "NOT_FOUND"
	CodeInvalidInput              = "INVALID_INPUT"
	CodeConcurrencyConflict       = "CONCURRENCY_CONFLICT"
	CodeInvalidState              = "INVALID_STATE"
	CodeInsufficientStock         = "INSUFFICIENT_STOCK"
	CodeConcurrentModification    = "CONCURRENT_MODIFICATION"
	CodeCustomerCreditBlocked     = "CUSTOMER_CREDIT_BLOCKED"
	CodeCustomerRequiredForCredit = "CUSTOMER_REQUIRED_FOR_CREDIT"
	CodeInsufficientPayment       = "INSUFFICIENT_PAYMENT"
	CodeProductUnavailable        = "PRODUCT_UNAVAILABLE"
	CodeOverReturn                = "OVER_RETURN"
	CodeInvalidStatusTransition   = "INVALID_STATUS_TRANSITION"
	CodeNoOpenCashDrawer          = "NO_OPEN_CASH_DRAWER"
	CodeCashDrawerAlreadyOpen     = "CASH_DRAWER_ALREADY_OPEN"
	CodeTransactionTimeout        = "TRANSACTION_TIMEOUT"
)

// Common domain errors
var (
	ErrNotFound                  = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput              = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict       = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState              = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock         = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrConcurrentModification    = NewDomainError(CodeConcurrentModification, "Stock changed concurrently, retry the operation")
	ErrCustomerCreditBlocked     = NewDomainError(CodeCustomerCreditBlocked, "Customer is not allowed to buy on credit")
	ErrCustomerRequiredForCredit = NewDomainError(CodeCustomerRequiredForCredit, "A customer is required for a credit sale")
	ErrInsufficientPayment       = NewDomainError(CodeInsufficientPayment, "Amount paid does not cover the sale total")
	ErrProductUnavailable        = NewDomainError(CodeProductUnavailable, "Product is not available for sale")
	ErrOverReturn                = NewDomainError(CodeOverReturn, "Return quantity exceeds the quantity sold")
	ErrInvalidStatusTransition   = NewDomainError(CodeInvalidStatusTransition, "Status transition is not allowed")
	ErrNoOpenCashDrawer          = NewDomainError(CodeNoOpenCashDrawer, "No open cash drawer")
	ErrCashDrawerAlreadyOpen     = NewDomainError(CodeCashDrawerAlreadyOpen, "A cash drawer is already open")
	ErrTransactionTimeout        = NewDomainError(CodeTransactionTimeout, "Transaction did not complete in time")
)

// InsufficientStock reports the product and what is available.
func InsufficientStock(productName string, available fmt.Stringer) *DomainError {
	return Errorf(CodeInsufficientStock, "Insufficient stock for %s: available %s", productName, available)
}

// InvalidTransition reports an illegal state change.
func InvalidTransition(entity, from, to string) *DomainError {
	return Errorf(CodeInvalidStatusTransition, "Cannot move %s from %s to %s", entity, from, to)
}
