package dto

import (
	"net/http"
	"strings"
)

// Error codes returned in the error envelope. Domain codes are exposed with
// the ERR_ prefix, see NormalizeErrorCode.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"

	ErrCodeNotFound               = "ERR_NOT_FOUND"
	ErrCodeConcurrencyConflict    = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeConcurrentModification = "ERR_CONCURRENT_MODIFICATION"
	ErrCodeCashDrawerAlreadyOpen  = "ERR_CASH_DRAWER_ALREADY_OPEN"

	ErrCodeInvalidState              = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock         = "ERR_INSUFFICIENT_STOCK"
	ErrCodeCustomerCreditBlocked     = "ERR_CUSTOMER_CREDIT_BLOCKED"
	ErrCodeCustomerRequiredForCredit = "ERR_CUSTOMER_REQUIRED_FOR_CREDIT"
	ErrCodeInsufficientPayment       = "ERR_INSUFFICIENT_PAYMENT"
	ErrCodeProductUnavailable        = "ERR_PRODUCT_UNAVAILABLE"
	ErrCodeOverReturn                = "ERR_OVER_RETURN"
	ErrCodeInvalidStatusTransition   = "ERR_INVALID_STATUS_TRANSITION"
	ErrCodeNoOpenCashDrawer          = "ERR_NO_OPEN_CASH_DRAWER"

	ErrCodeTransactionTimeout = "ERR_TRANSACTION_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. Validation
// problems are 400, broken preconditions 422, lost races 409 and an
// exhausted unit-of-work deadline 504.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeConcurrencyConflict:    http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodeCashDrawerAlreadyOpen:  http.StatusConflict,

	ErrCodeInvalidState:              http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:         http.StatusUnprocessableEntity,
	ErrCodeCustomerCreditBlocked:     http.StatusUnprocessableEntity,
	ErrCodeCustomerRequiredForCredit: http.StatusUnprocessableEntity,
	ErrCodeInsufficientPayment:       http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable:        http.StatusUnprocessableEntity,
	ErrCodeOverReturn:                http.StatusUnprocessableEntity,
	ErrCodeInvalidStatusTransition:   http.StatusUnprocessableEntity,
	ErrCodeNoOpenCashDrawer:          http.StatusUnprocessableEntity,

	ErrCodeTransactionTimeout: http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its API form
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeInternal
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
