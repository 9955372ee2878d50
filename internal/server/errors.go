package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cashsessiondomain "github.com/tecnomade/clouget-pos/internal/cashsession/domain"
	creditnotedomain "github.com/tecnomade/clouget-pos/internal/creditnote/domain"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	expensedomain "github.com/tecnomade/clouget-pos/internal/expense/domain"
	fiscaldomain "github.com/tecnomade/clouget-pos/internal/fiscal/domain"
	notificationdomain "github.com/tecnomade/clouget-pos/internal/notification/domain"
	pricelistdomain "github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	saledomain "github.com/tecnomade/clouget-pos/internal/sale/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	}

	switch {
	case isPreconditionError(err):
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "precondition_failed",
			Message: err.Error(),
		}
	case errors.Is(err, fiscaldomain.ErrQuotaDenied):
		return http.StatusForbidden, errorPayload{
			Type:    "quota_denied",
			Message: "document quota denied",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCustomerValidationError(err),
		isProductValidationError(err),
		isPriceListValidationError(err),
		isSaleValidationError(err),
		isCreditNoteValidationError(err),
		isCashSessionValidationError(err),
		isExpenseValidationError(err),
		isFiscalValidationError(err),
		errors.Is(err, notificationdomain.ErrEmptyAddress):
		return true
	default:
		return false
	}
}

// Precondition failures are configuration gaps the caller must fix
// before emission can proceed.
func isPreconditionError(err error) bool {
	switch {
	case errors.Is(err, fiscaldomain.ErrEnvironmentUnconfirmed),
		errors.Is(err, fiscaldomain.ErrNoCertificate),
		errors.Is(err, fiscaldomain.ErrSettingsIncomplete):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, customerdomain.ErrDuplicate),
		errors.Is(err, productdomain.ErrDuplicateCode),
		errors.Is(err, productdomain.ErrInsufficientStock),
		errors.Is(err, saledomain.ErrNoOpenSession),
		errors.Is(err, saledomain.ErrInsufficientStock),
		errors.Is(err, saledomain.ErrProductInactive),
		errors.Is(err, saledomain.ErrAlreadyVoided),
		errors.Is(err, saledomain.ErrAuthorizedSale),
		errors.Is(err, creditnotedomain.ErrNoteExists),
		errors.Is(err, creditnotedomain.ErrSaleNotAuthorized),
		errors.Is(err, cashsessiondomain.ErrAlreadyOpen),
		errors.Is(err, cashsessiondomain.ErrAlreadyClosed),
		errors.Is(err, cashsessiondomain.ErrNoOpenSession),
		errors.Is(err, expensedomain.ErrSessionClosed),
		errors.Is(err, fiscaldomain.ErrReceiptNotFiscal),
		errors.Is(err, fiscaldomain.ErrVoidedSale),
		errors.Is(err, fiscaldomain.ErrCustomerNotTaxable):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, pricelistdomain.ErrNotFound),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, creditnotedomain.ErrNotFound),
		errors.Is(err, cashsessiondomain.ErrNotFound),
		errors.Is(err, expensedomain.ErrNotFound),
		errors.Is(err, fiscaldomain.ErrNotFound):
		return true
	default:
		return false
	}
}

func isCustomerValidationError(err error) bool {
	switch err {
	case customerdomain.ErrInvalidName,
		customerdomain.ErrInvalidIdentification,
		customerdomain.ErrInvalidEmail,
		customerdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidCode,
		productdomain.ErrInvalidName,
		productdomain.ErrInvalidPrice,
		productdomain.ErrInvalidTaxRate,
		productdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isPriceListValidationError(err error) bool {
	switch err {
	case pricelistdomain.ErrInvalidName,
		pricelistdomain.ErrInvalidID,
		pricelistdomain.ErrInvalidPrice:
		return true
	default:
		return false
	}
}

func isSaleValidationError(err error) bool {
	switch err {
	case saledomain.ErrInvalidOperator,
		saledomain.ErrInvalidKind,
		saledomain.ErrInvalidPayment,
		saledomain.ErrEmptyCart,
		saledomain.ErrInvalidQuantity,
		saledomain.ErrInvalidDiscount,
		saledomain.ErrInvalidID,
		saledomain.ErrCustomerRequired,
		saledomain.ErrInsufficientCash:
		return true
	default:
		return false
	}
}

func isCreditNoteValidationError(err error) bool {
	switch err {
	case creditnotedomain.ErrInvalidID,
		creditnotedomain.ErrEmptyReason,
		creditnotedomain.ErrNoLines,
		creditnotedomain.ErrInvalidQuantity,
		creditnotedomain.ErrQuantityExceedsSold,
		creditnotedomain.ErrLineNotInSale:
		return true
	default:
		return false
	}
}

func isCashSessionValidationError(err error) bool {
	switch err {
	case cashsessiondomain.ErrInvalidOperator,
		cashsessiondomain.ErrInvalidAmount,
		cashsessiondomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isExpenseValidationError(err error) bool {
	switch err {
	case expensedomain.ErrInvalidConcept,
		expensedomain.ErrInvalidAmount,
		expensedomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isFiscalValidationError(err error) bool {
	switch err {
	case fiscaldomain.ErrInvalidID,
		fiscaldomain.ErrInvalidEnvironment,
		fiscaldomain.ErrInvalidCertificate:
		return true
	default:
		return false
	}
}
